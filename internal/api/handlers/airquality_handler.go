package handlers

import (
	"net/http"

	"github.com/tochi-dev/medisync/internal/core/airquality"
)

type AirQualityHandler struct {
	poller *airquality.Poller
}

func NewAirQualityHandler(poller *airquality.Poller) *AirQualityHandler {
	return &AirQualityHandler{poller: poller}
}

func (h *AirQualityHandler) Latest(w http.ResponseWriter, r *http.Request) {
	reading := h.poller.Latest()
	if reading == nil {
		respondMessage(w, http.StatusNotFound, "no air quality reading yet")
		return
	}
	respondJSON(w, http.StatusOK, reading)
}
