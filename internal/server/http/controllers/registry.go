package controllers

import (
	"net/http"

	"github.com/DJ45X/snowgen/internal/runtime"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	ids     *IDsController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and id service.
func NewControllerRegistry(rt *runtime.Runtime, svc *idsvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		ids:     NewIDsController(svc, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.ids.RegisterRoutes(mux)
}
