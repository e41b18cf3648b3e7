// Package airquality keeps a periodically refreshed reading from the
// external AQI feed. The poller is the only background job in the
// service; the dashboards read whatever the last successful poll stored.
package airquality

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/models"
)

type feedResponse struct {
	Status string `json:"status"`
	Data   struct {
		AQI  int `json:"aqi"`
		IAQI struct {
			PM25 struct {
				V float64 `json:"v"`
			} `json:"pm25"`
			PM10 struct {
				V float64 `json:"v"`
			} `json:"pm10"`
		} `json:"iaqi"`
		City struct {
			Name string `json:"name"`
		} `json:"city"`
	} `json:"data"`
}

type Poller struct {
	client   *resty.Client
	token    string
	city     string
	interval time.Duration

	mu     sync.RWMutex
	latest *models.AirQualityReading
}

func NewPoller(baseURL, token, city string, interval time.Duration) *Poller {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)

	return &Poller{client: client, token: token, city: city, interval: interval}
}

// Start polls immediately and then on every tick until ctx is cancelled.
// Failures are logged and retried on the next tick; the previous reading
// stays served in the meantime.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		p.poll(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Latest returns the most recent reading, or nil before the first
// successful poll.
func (p *Poller) Latest() *models.AirQualityReading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *Poller) poll(ctx context.Context) {
	var out feedResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("token", p.token).
		SetResult(&out).
		Get(fmt.Sprintf("/feed/%s/", p.city))
	if err != nil {
		log.Warn().Err(err).Str("city", p.city).Msg("air quality poll failed")
		return
	}
	if resp.IsError() || out.Status != "ok" {
		log.Warn().Int("status", resp.StatusCode()).Str("feed_status", out.Status).Msg("air quality feed error")
		return
	}

	reading := &models.AirQualityReading{
		City:      out.Data.City.Name,
		AQI:       out.Data.AQI,
		PM25:      out.Data.IAQI.PM25.V,
		PM10:      out.Data.IAQI.PM10.V,
		FetchedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.latest = reading
	p.mu.Unlock()

	log.Debug().Str("city", reading.City).Int("aqi", reading.AQI).Msg("air quality updated")
}
