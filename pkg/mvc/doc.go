// Package mvc implements conventional routing: ordered URL templates that
// map paths to area, controller and action names, and a registry of
// controller actions the matched names dispatch to.
//
// Template segments are literals or parameters:
//
//	{name}          required
//	{name?}         optional, trailing only
//	{name=Default}  default value
//	{name:int}      constrained; "exists" accepts registered areas
//
// Matching and controller/action names are case-insensitive.
//
//	r := mvc.New()
//	_ = r.MapRoute("areaRoute", "{area:exists}/{controller}/{action}", map[string]string{"action": "Index"})
//	_ = r.MapRoute("default", "{controller}/{action}/{id?}", map[string]string{"controller": "Home", "action": "Index"})
//	_ = r.MapRoute("api", "{controller}/{id?}", nil)
//	r.Register(controllers.NewHome(...), controllers.NewStore(...))
//	app := internal.New(internal.WithNotFoundHandler(r.Handler()))
package mvc
