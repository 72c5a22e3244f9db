package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&models.ValidationError{Fields: map[string]string{"amount": "must be provided"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("submit: %w", types.ErrInvalidCoordinate), http.StatusBadRequest},
		{types.ErrNotParticipant, http.StatusForbidden},
		{types.ErrNegotiationNotFound, http.StatusNotFound},
		{types.ErrDriverNotFound, http.StatusNotFound},
		{types.ErrDuplicateNegotiation, http.StatusConflict},
		{types.ErrSameActorRepeat, http.StatusConflict},
		{types.ErrConcurrentUpdate, http.StatusConflict},
		{types.ErrDatabaseFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestReadPage(t *testing.T) {
	tests := []struct {
		query   string
		want    models.Page
		invalid bool
	}{
		{"", models.Page{}, false},
		{"limit=5&offset=10", models.Page{Limit: 5, Offset: 10}, false},
		{"limit=abc", models.Page{}, true},
		{"offset=-1", models.Page{Offset: -1}, true},
	}

	for _, tt := range tests {
		qs, err := url.ParseQuery(tt.query)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", tt.query, err)
		}
		v := validator.New()
		got := readPage(qs, v)
		if got != tt.want {
			t.Errorf("readPage(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
		if v.Valid() == tt.invalid {
			t.Errorf("readPage(%q) valid = %v, want %v", tt.query, v.Valid(), !tt.invalid)
		}
	}
}

func TestReadRequiredFloat(t *testing.T) {
	v := validator.New()
	qs := url.Values{"lat": {"NaN"}}

	readRequiredFloat(qs, "lat", v)
	readRequiredFloat(qs, "lon", v)

	if v.Errors["lat"] != "must be a number" {
		t.Fatalf("lat error = %q", v.Errors["lat"])
	}
	if v.Errors["lon"] != "must be provided" {
		t.Fatalf("lon error = %q", v.Errors["lon"])
	}
}
