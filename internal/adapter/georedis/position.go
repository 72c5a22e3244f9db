// Package georedis keeps the latest actor positions in a Redis GEO set.
package georedis

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "campusride"

	// MaxLatitude is the GEOADD limit. Positions beyond it stay in the primary store only.
	MaxLatitude = 85.05112878

	kmPerDegree = 111.32
)

// PositionIndex stores one GEO member per actor plus a hash of "sampleID|unixNano" seen markers.
type PositionIndex struct {
	client  redis.UniversalClient
	geoKey  string
	seenKey string
}

func NewPositionIndex(client redis.UniversalClient, prefix string) *PositionIndex {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &PositionIndex{
		client:  client,
		geoKey:  prefix + ":positions",
		seenKey: prefix + ":positions:seen",
	}
}

// Upsert writes position and seen marker in one MULTI block. Last writer wins.
// A sample outside the GEO latitude range drops the actor's entry instead.
func (p *PositionIndex) Upsert(ctx context.Context, s models.LocationSample) (err error) {
	defer func(start time.Time) {
		metrics.RecordDatabaseQuery(metrics.ServiceLabel(), "PositionIndex.Upsert", err, time.Since(start))
	}(time.Now())

	member := s.ActorID.String()
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if math.Abs(s.Latitude) > MaxLatitude {
			pipe.ZRem(ctx, p.geoKey, member)
			pipe.HDel(ctx, p.seenKey, member)
			return nil
		}
		pipe.GeoAdd(ctx, p.geoKey, &redis.GeoLocation{
			Name:      member,
			Longitude: s.Longitude,
			Latitude:  s.Latitude,
		})
		pipe.HSet(ctx, p.seenKey, member, encodeSeen(s.ID, s.CapturedAt))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis position upsert: %w: %w", types.ErrDatabaseFailed, err)
	}
	return nil
}

// Covers reports whether box lies inside the latitude range Redis can index.
func (p *PositionIndex) Covers(box models.BoundingBox) bool {
	return box.North <= MaxLatitude && box.South >= -MaxLatitude
}

// InBox searches a box that covers the requested one and then filters exactly.
func (p *PositionIndex) InBox(ctx context.Context, box models.BoundingBox, seenAfter time.Time) (_ []models.LocationSample, err error) {
	defer func(start time.Time) {
		metrics.RecordDatabaseQuery(metrics.ServiceLabel(), "PositionIndex.InBox", err, time.Since(start))
	}(time.Now())

	centerLat := (box.North + box.South) / 2
	centerLon := (box.East + box.West) / 2
	heightKm, widthKm := coveringSize(box)

	found, err := p.client.GeoSearchLocation(ctx, p.geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude: centerLon,
			Latitude:  centerLat,
			BoxWidth:  widthKm,
			BoxHeight: heightKm,
			BoxUnit:   "km",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis position search: %w: %w", types.ErrDatabaseFailed, err)
	}
	if len(found) == 0 {
		return []models.LocationSample{}, nil
	}

	members := make([]string, len(found))
	for i, loc := range found {
		members[i] = loc.Name
	}
	seen, err := p.client.HMGet(ctx, p.seenKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis position seen: %w: %w", types.ErrDatabaseFailed, err)
	}

	out := make([]models.LocationSample, 0, len(found))
	for i, loc := range found {
		if !box.Contains(loc.Latitude, loc.Longitude) {
			continue
		}
		raw, ok := seen[i].(string)
		if !ok {
			continue
		}
		id, capturedAt, err := decodeSeen(raw)
		if err != nil || capturedAt.Before(seenAfter) {
			continue
		}
		actorID, err := uuid.Parse(loc.Name)
		if err != nil {
			continue
		}
		out = append(out, models.LocationSample{
			ID:         id,
			ActorID:    actorID,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			CapturedAt: capturedAt,
		})
	}

	slices.SortFunc(out, func(a, b models.LocationSample) int {
		if c := b.CapturedAt.Compare(a.CapturedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// coveringSize returns box dimensions in km measured at the latitude closest to the equator.
func coveringSize(box models.BoundingBox) (heightKm, widthKm float64) {
	var widest float64
	switch {
	case box.South <= 0 && box.North >= 0:
		widest = 0
	case box.South > 0:
		widest = box.South
	default:
		widest = box.North
	}
	heightKm = (box.North-box.South)*kmPerDegree + 0.01
	widthKm = (box.East-box.West)*kmPerDegree*math.Cos(widest*math.Pi/180) + 0.01
	return heightKm, widthKm
}

func encodeSeen(id int64, at time.Time) string {
	return strconv.FormatInt(id, 10) + "|" + strconv.FormatInt(at.UnixNano(), 10)
}

func decodeSeen(raw string) (int64, time.Time, error) {
	idPart, atPart, ok := strings.Cut(raw, "|")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("malformed seen marker %q", raw)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, err
	}
	nanos, err := strconv.ParseInt(atPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, err
	}
	return id, time.Unix(0, nanos).UTC(), nil
}
