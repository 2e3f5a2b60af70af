// Package controllers holds the music store actions. Each controller
// registers its actions on an mvc.Controllers registry and is reached
// through the conventional route table.
package controllers
