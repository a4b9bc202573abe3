package router

import (
	"net/http"

	_ "animal-registry/docs"
	mem "animal-registry/internal/adapters/storage/memory"
	"animal-registry/internal/domain/animals"
	"animal-registry/internal/domain/owners"
	"animal-registry/internal/middleware"
	"animal-registry/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Log logger.Logger // nil = Nop

	// Gateway de archivos. Si es nil se usa uno en memoria (modo dev / tests).
	Gateway animals.Gateway

	// Registry permite inyectar un registro ya cargado (p.ej. snapshot al arrancar).
	Registry *animals.Service

	// Owners: si es nil, repo en memoria vacío.
	Owners *owners.Service

	// OwnerResolver para asociar dueños a animales. Si es nil se resuelve
	// contra Owners (mismo proceso).
	OwnerResolver animals.OwnerResolver

	Delimiter rune
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	gw := opts.Gateway
	if gw == nil {
		gw = mem.NewGateway()
	}

	registry := opts.Registry
	if registry == nil {
		registry = animals.NewService(log)
	}

	ownersSvc := opts.Owners
	if ownersSvc == nil {
		ownersSvc = owners.NewService(mem.NewOwnerRepo())
	}

	var resolver animals.OwnerResolver = ownersSvc
	if opts.OwnerResolver != nil {
		resolver = opts.OwnerResolver
	}

	// Rutas por módulo
	animals.RegisterRoutes(r, animals.Deps{
		Service:   registry,
		Gateway:   gw,
		Owners:    resolver,
		Delimiter: opts.Delimiter,
		Log:       log,
	})
	owners.RegisterRoutes(r, ownersSvc)

	return r
}
