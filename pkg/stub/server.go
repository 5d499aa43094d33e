/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stub is an in-memory stand in for the classifieds service that
// answers the way the real one does.  It lets the checker be tested end to
// end without network access, and lets tests inject misbehaviour.
package stub

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
)

// Server holds ads in memory.
type Server struct {
	lock sync.Mutex
	ads  map[string]*adapi.AdRecord
	// order keeps listings stable.
	order []string
	// overrides replace the response for a path.
	overrides map[string]Override
	logger    logr.Logger
}

// Option configures a server.
type Option func(*Server)

// WithLogger logs every request at verbosity 1.
func WithLogger(logger logr.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Override is a canned response.
type Override struct {
	Status int
	Body   string
}

// New returns an empty server.
func New(options ...Option) *Server {
	s := &Server{
		ads:       map[string]*adapi.AdRecord{},
		overrides: map[string]Override{},
		logger:    logr.Discard(),
	}

	for _, o := range options {
		o(s)
	}

	return s
}

// Handler returns the service's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.log, s.override)

	r.Post("/api/1/item", s.createItem)
	r.Get("/api/1/item/{id}", s.getItem)
	r.Get("/api/1/{sellerID}/item", s.listSellerItems)
	r.Get("/api/1/statistic/{id}", s.getStatistic)

	return r
}

// Seed stores an ad as is, allowing tests to choose its identifier.
func (s *Server) Seed(ad adapi.AdRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.store(&ad)
}

// Override makes every request to path answer with the given response.
func (s *Server) Override(path string, override Override) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.overrides[path] = override
}

func (s *Server) store(ad *adapi.AdRecord) {
	if _, ok := s.ads[ad.ID]; !ok {
		s.order = append(s.order, ad.ID)
	}

	s.ads[ad.ID] = ad
}

func (s *Server) log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.V(1).Info("request served", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "traceparent", r.Header.Get("Traceparent"))
	})
}

func (s *Server) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		override, ok := s.overrides[r.URL.Path]
		s.lock.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(override.Status)
		_, _ = w.Write([]byte(override.Body))
	})
}

func respondWithJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondWithBadRequest(w http.ResponseWriter, message string, messages map[string]any) {
	if messages == nil {
		messages = map[string]any{}
	}

	respondWithJSON(w, http.StatusBadRequest, &adapi.ErrorEnvelope{
		Result: adapi.ErrorResult{
			Message:  message,
			Messages: messages,
		},
		Status: strconv.Itoa(http.StatusBadRequest),
	})
}

func respondWithNotFound(w http.ResponseWriter, what string) {
	respondWithJSON(w, http.StatusNotFound, &adapi.NotFound{
		Error: what + " not found",
	})
}

// integer accepts JSON numbers with no fractional part.
func integer(value any) (int, bool) {
	f, ok := value.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}

	return int(f), true
}

// decodeCreate strictly type checks a create request, returning the
// problems keyed by field.
func decodeCreate(raw map[string]any) (*adapi.AdCreateRequest, map[string]any) {
	problems := map[string]any{}
	request := &adapi.AdCreateRequest{}

	if v, ok := integer(raw["sellerID"]); !ok || v < 1 {
		problems["sellerID"] = "must be a positive integer"
	} else {
		request.SellerID = v
	}

	if v, ok := raw["name"].(string); !ok || v == "" {
		problems["name"] = "must be a non-empty string"
	} else {
		request.Name = v
	}

	if v, ok := integer(raw["price"]); !ok || v < 0 {
		problems["price"] = "must be a non-negative integer"
	} else {
		request.Price = v
	}

	if rawStatistics, present := raw["statistics"]; present {
		statistics, ok := rawStatistics.(map[string]any)
		if !ok {
			problems["statistics"] = "must be an object"
		} else {
			request.Statistics = &adapi.Statistics{}

			fields := map[string]*int{
				"contacts":  &request.Statistics.Contacts,
				"likes":     &request.Statistics.Likes,
				"viewCount": &request.Statistics.ViewCount,
			}

			for name, field := range fields {
				if v, ok := integer(statistics[name]); ok {
					*field = v
				} else {
					problems["statistics."+name] = "must be an integer"
				}
			}
		}
	}

	return request, problems
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondWithBadRequest(w, "invalid request body", nil)
		return
	}

	request, problems := decodeCreate(raw)
	if len(problems) > 0 {
		respondWithBadRequest(w, "", problems)
		return
	}

	ad := &adapi.AdRecord{
		ID:        uuid.NewString(),
		SellerID:  request.SellerID,
		Name:      request.Name,
		Price:     request.Price,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05.999999999 -0700 -0700"),
	}

	if request.Statistics != nil {
		ad.Statistics = *request.Statistics
	}

	s.lock.Lock()
	s.store(ad)
	s.lock.Unlock()

	respondWithJSON(w, http.StatusOK, &adapi.PostAck{
		Status: fmt.Sprintf("Saved ad - %s", ad.ID),
	})
}

// lookup resolves an ad identifier.  Unknown identifiers that are still
// well formed, numeric or UUID, are missing rather than invalid.
func (s *Server) lookup(id string) (*adapi.AdRecord, bool, bool) {
	s.lock.Lock()
	ad, ok := s.ads[id]
	s.lock.Unlock()

	if ok {
		return ad, true, true
	}

	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
		return nil, false, true
	}

	if _, err := uuid.Parse(id); err == nil {
		return nil, false, true
	}

	return nil, false, false
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ad, found, valid := s.lookup(id)

	switch {
	case !valid:
		respondWithBadRequest(w, "invalid id "+id, nil)
	case !found:
		respondWithNotFound(w, "item "+id)
	default:
		respondWithJSON(w, http.StatusOK, ad)
	}
}

func (s *Server) getStatistic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ad, found, valid := s.lookup(id)

	switch {
	case !valid:
		respondWithBadRequest(w, "invalid id "+id, nil)
	case !found:
		respondWithNotFound(w, "statistic "+id)
	default:
		respondWithJSON(w, http.StatusOK, &ad.Statistics)
	}
}

func (s *Server) listSellerItems(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "sellerID")

	// Seller identifiers are 32 bit on the service side.
	sellerID, err := strconv.ParseInt(param, 10, 32)
	if err != nil || sellerID < 1 {
		respondWithBadRequest(w, "invalid seller id "+param, nil)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	ads := []*adapi.AdRecord{}

	for _, id := range s.order {
		if ad := s.ads[id]; ad.SellerID == int(sellerID) {
			ads = append(ads, ad)
		}
	}

	respondWithJSON(w, http.StatusOK, ads)
}
