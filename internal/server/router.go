package server

import (
	"context"
	"net/http"

	"qcs/internal/handlers"
	applog "qcs/internal/log"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

var apiRoutes = []route{
	{"/api/suppliers", handlers.SupplierCollection},
	{"/api/suppliers/{id}", handlers.SupplierResource},
	{"/api/packages", handlers.PackageCollection},
	{"/api/packages/{id}", handlers.PackageResource},
	{"/api/products", handlers.ProductCollection},
	{"/api/products/{id}", handlers.ProductResource},
	{"/api/batches", handlers.BatchCollection},
	{"/api/batches/{id}", handlers.BatchResource},
	{"/api/batches/{id}/coa", handlers.BatchCoa},
	{"/api/batches/{id}/coa/text", handlers.BatchCoaText},
	{"/api/batches/{id}/color-sheet", handlers.BatchColorSheet},
	{"/api/color-data", handlers.ColorDataCollection},
	{"/api/color-data/{id}", handlers.ColorDataResource},
	{"/api/schema", handlers.Schemas},
	{"/api/schema/{model}", handlers.Schema},
	{"/api/export/color-data", handlers.ExportColorData},
}

func newRouter(staticDir string) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")
	for _, r := range apiRoutes {
		mux.Handle(r.pattern, handlers.RequireAPIAuthentication(r.handler))
	}
	mux.Handle("/api/", handlers.RequireAPIAuthentication(http.NotFoundHandler()))
	applog.Debug(context.Background(), "route registered", "path", "/api/", "protected", true, "routes", len(apiRoutes))
	mux.HandleFunc("/{$}", handlers.Home)
	applog.Debug(context.Background(), "route registered", "path", "/")
	if staticDir == "" {
		staticDir = defaultStaticDir
	}
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(staticDir))))
	applog.Debug(context.Background(), "route registered", "path", "/assets/", "static", true, "dir", staticDir)
	return mux
}
