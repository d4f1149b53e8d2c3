// Package handlers translates HTTP requests into service calls and renders
// the results through the respond envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/middleware"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
)

// errorRenderer is embedded by every handler that can fail.
type errorRenderer struct {
	log   logrus.FieldLogger
	debug bool
}

func (e errorRenderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	respond.Err(w, e.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}), err, e.debug)
}

type sanitizer interface {
	Sanitize()
}

// decode reads a JSON body into dst and cleans its free-text fields.
// Unknown fields are ignored so server-owned fields like balance are dropped.
func decode(r *http.Request, dst sanitizer) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperror.PayloadTooLarge("Request body too large")
		case errors.Is(err, io.EOF):
			return apperror.Validation("Request body is required")
		default:
			return apperror.Validation("Invalid JSON payload")
		}
	}
	dst.Sanitize()
	return nil
}

func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return uuid.Nil, apperror.Unauthorized("Access token required")
	}
	return id, nil
}

// pathID parses a path variable. A malformed id cannot name an existing
// record, so it is reported with the same not-found message.
func pathID(r *http.Request, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperror.NotFound(notFound)
	}
	return id, nil
}

func parsePageQuery(r *http.Request) (dto.PageQuery, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page", dto.DefaultPage)
	if err != nil {
		return dto.PageQuery{}, err
	}
	limit, err := intParam(q.Get("limit"), "limit", dto.DefaultLimit)
	if err != nil {
		return dto.PageQuery{}, err
	}
	pq := dto.PageQuery{Page: page, Limit: limit}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		t := models.TransactionType(strings.ToUpper(raw))
		pq.Type = &t
	}
	return pq, nil
}

func parseHistoryQuery(r *http.Request) (dto.HistoryQuery, error) {
	pq, err := parsePageQuery(r)
	if err != nil {
		return dto.HistoryQuery{}, err
	}
	hq := dto.HistoryQuery{PageQuery: pq}
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("accountId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dto.HistoryQuery{}, apperror.Validation("accountId must be a valid UUID")
		}
		hq.AccountID = &id
	}
	if hq.StartDate, err = dateParam(q.Get("startDate"), "startDate", false); err != nil {
		return dto.HistoryQuery{}, err
	}
	if hq.EndDate, err = dateParam(q.Get("endDate"), "endDate", true); err != nil {
		return dto.HistoryQuery{}, err
	}
	return hq, nil
}

func intParam(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

const dateOnly = "2006-01-02"

// dateParam accepts RFC 3339 timestamps or plain dates. A plain end date
// covers that whole day.
func dateParam(raw, name string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("%s must be an RFC 3339 timestamp or a YYYY-MM-DD date", name))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
