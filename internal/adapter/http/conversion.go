package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxRequestBytes = 64 << 10

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type domainView struct {
	Name     string   `json:"name"`
	BaseUnit string   `json:"base_unit"`
	Units    []string `json:"units"`
}

type domainsResponse struct {
	Domains []domainView `json:"domains"`
}

type unitsResponse struct {
	Domain string   `json:"domain"`
	Units  []string `json:"units"`
}

type validateResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) handleDomains(w http.ResponseWriter, _ *http.Request) {
	resp := domainsResponse{Domains: make([]domainView, 0, len(domain.Domains()))}
	for _, d := range domain.Domains() {
		view, err := newDomainView(d)
		if err != nil {
			s.logger.Error("catalog listing failed", "domain", d.String(), "error", err)
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}
		resp.Domains = append(resp.Domains, view)
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func newDomainView(d domain.Domain) (domainView, error) {
	base, err := d.BaseUnit()
	if err != nil {
		return domainView{}, err
	}
	units, err := domain.ListUnits(d)
	if err != nil {
		return domainView{}, err
	}
	return domainView{Name: d.String(), BaseUnit: base.Name(), Units: units}, nil
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, http.StatusNotFound, domain.ErrorMessage(err))
		return
	}
	units, err := domain.ListUnits(d)
	if err != nil {
		writeError(w, http.StatusNotFound, domain.ErrorMessage(err))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, unitsResponse{Domain: d.String(), Units: units})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ok, msg := domain.ValidateAmount(r.URL.Query().Get("amount"))
	sharedobs.WriteJSON(w, http.StatusOK, validateResponse{OK: ok, Message: msg})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req domain.ConversionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.logger.Debug("conversion request rejected", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result := domain.Execute(req)
	s.metrics.ObserveConversion(result)

	if !result.OK() {
		s.logger.Debug("conversion failed",
			"request_id", result.RequestID,
			"domain", result.Domain,
			"kind", result.Error.Kind,
			"message", result.Error.Message,
		)
		s.writeEncoded(w, http.StatusBadRequest, result)
		return
	}
	s.writeEncoded(w, http.StatusOK, result)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "missing required fields: " + strings.Join(fields, ", ")
}
