package diagnostics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
	"github.com/kbukum/exportkit/observability"
	"github.com/kbukum/exportkit/validation"
	"github.com/kbukum/exportkit/version"
)

func (s *Server) registrations() []facade.RegistrationInfo {
	in, ok := s.provider.(facade.Inspector)
	if !ok {
		return nil
	}
	return in.Registrations()
}

func (s *Server) listExports(c *gin.Context) {
	hidden := false
	if raw, ok := c.GetQuery("hidden"); ok {
		v, err := cast.ToBoolE(raw)
		if err != nil {
			RespondWithError(c, errors.InvalidInput("hidden", "must be a boolean"))
			return
		}
		hidden = v
	}

	var views []ExportView
	for _, info := range s.registrations() {
		if info.Hidden && !hidden {
			continue
		}
		views = append(views, newExportView(info))
	}
	RespondList(c, views)
}

func (s *Server) contractExports(c *gin.Context) {
	contract := c.Param("contract")
	if appErr := validation.New().Required("contract", contract).Validate(); appErr != nil {
		RespondWithError(c, appErr)
		return
	}
	name, byName := c.GetQuery("name")

	var views []ExportView
	for _, info := range s.registrations() {
		if !matchesContract(info, contract) {
			continue
		}
		if byName && !metadata.ContractNameMatches(info.Metadata, name) {
			continue
		}
		views = append(views, newExportView(info))
	}
	if len(views) == 0 {
		RespondWithError(c, errors.ExportNotFound(contract))
		return
	}
	RespondList(c, views)
}

func (s *Server) healthCheck(c *gin.Context) {
	sh := observability.NewServiceHealth(s.service, s.version)
	for _, h := range s.health(c.Request.Context()) {
		sh.AddComponent(h)
	}

	status := http.StatusOK
	if sh.Status == component.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

// InfoView is the /info payload.
type InfoView struct {
	Service string       `json:"service"`
	Version string       `json:"version,omitempty"`
	Backend string       `json:"backend,omitempty"`
	Build   version.Info `json:"build"`
}

func (s *Server) buildInfo(c *gin.Context) {
	RespondOK(c, InfoView{
		Service: s.service,
		Version: s.version,
		Backend: s.backend,
		Build:   version.Get(),
	})
}
