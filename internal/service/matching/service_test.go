package matching

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/adapter/memory"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/calculator"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/google/uuid"
)

type recorder struct {
	mu    sync.Mutex
	got   []models.Notification
	err   error
	panic bool
}

func (r *recorder) Notify(_ context.Context, n models.Notification) error {
	if r.panic {
		panic("sink exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recorder) sent() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.got...)
}

type staticGeocoder map[string]models.Coordinate

func (g staticGeocoder) Geocode(_ context.Context, address string) (models.Coordinate, error) {
	c, ok := g[address]
	if !ok {
		return models.Coordinate{}, errors.New("address not found")
	}
	return c, nil
}

type env struct {
	svc       *Service
	registry  *location.Registry
	requests  *memory.RequestStore
	directory *memory.DriverDirectory
	notes     *recorder
	rider     uuid.UUID
	driver    models.DriverProfile
}

var campus = models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

func newEnv(t *testing.T, notifier Notifier, geocoder Geocoder) *env {
	t.Helper()

	tx := memory.NewTxManager()
	driver := models.DriverProfile{ID: uuid.New(), Name: "Dana", Rating: 5, Verified: true}
	directory := memory.NewDriverDirectory(driver)
	registry := location.New(memory.NewPositionStore(), memory.NewSampleLog(), directory, tx, logger.Discard())
	requests := memory.NewRequestStore()

	e := &env{
		registry:  registry,
		requests:  requests,
		directory: directory,
		rider:     uuid.New(),
		driver:    driver,
	}
	if notifier == nil {
		e.notes = &recorder{}
		notifier = e.notes
	}

	e.svc = New(DefaultConfig(), Deps{
		Requests:    requests,
		Rides:       memory.NewRideStore(),
		Drivers:     directory,
		Locator:     registry,
		Negotiation: negotiation.New(memory.NewNegotiationStore(), tx, logger.Discard()),
		Calculator:  calculator.New(calculator.DefaultPlatformShare),
		Notifier:    notifier,
		Geocoder:    geocoder,
		TxManager:   tx,
	}, logger.Discard())
	t.Cleanup(e.svc.Wait)
	return e
}

func (e *env) draft() models.RequestDraft {
	origin := campus
	return models.RequestDraft{
		Origin:           "Main Library",
		Destination:      "Airport",
		OriginCoord:      &origin,
		DepartureTime:    time.Now().Add(2 * time.Hour),
		MaxFarePerPerson: 15,
		PassengerCount:   2,
	}
}

func (e *env) submit(t *testing.T) *models.RideRequest {
	t.Helper()
	req, err := e.svc.SubmitRequest(context.Background(), e.rider, e.draft())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	return req
}

func TestSubmitRequestValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	bad := models.Coordinate{Latitude: 95, Longitude: 0}

	tests := []struct {
		name  string
		edit  func(d *models.RequestDraft)
		field string
	}{
		{"no passengers", func(d *models.RequestDraft) { d.PassengerCount = 0 }, "passengers"},
		{"too many passengers", func(d *models.RequestDraft) { d.PassengerCount = 9 }, "passengers"},
		{"negative fare", func(d *models.RequestDraft) { d.MaxFarePerPerson = -0.01 }, "max_fare"},
		{"past departure", func(d *models.RequestDraft) { d.DepartureTime = time.Now().Add(-time.Minute) }, "departure_time"},
		{"blank origin", func(d *models.RequestDraft) { d.Origin = "   " }, "origin"},
		{"missing destination", func(d *models.RequestDraft) { d.Destination = "" }, "destination"},
		{"bad origin coordinate", func(d *models.RequestDraft) { d.OriginCoord = &bad }, "origin_coord"},
		{"bad destination coordinate", func(d *models.RequestDraft) { d.DestCoord = &bad }, "dest_coord"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.draft()
			tt.edit(&d)

			_, err := e.svc.SubmitRequest(context.Background(), e.rider, d)
			var v *models.ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if _, ok := v.Fields[tt.field]; !ok || len(v.Fields) != 1 {
				t.Fatalf("fields = %v, want only %q", v.Fields, tt.field)
			}
		})
	}

	page, _, err := e.svc.ListPendingRequests(context.Background(), models.Page{})
	if err != nil {
		t.Fatalf("ListPendingRequests: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("invalid drafts were stored: %d", len(page))
	}
}

func TestSubmitRequestNotifiesFreshNearbyDrivers(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	far := models.DriverProfile{ID: uuid.New(), Rating: 4, Verified: true}
	e.directory.Put(far)

	if _, err := e.registry.RecordHeartbeat(ctx, e.driver.ID, 40.7138, -74.0060); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	if _, err := e.registry.RecordHeartbeat(ctx, far.ID, 41.2, -74.0060); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	req := e.submit(t)
	if req.Status != types.RequestPending {
		t.Fatalf("status = %s, want PENDING", req.Status)
	}
	e.svc.Wait()

	sent := e.notes.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1: %+v", len(sent), sent)
	}
	n := sent[0]
	if n.RecipientID != e.driver.ID || n.SenderID != e.rider || n.Type != types.NotificationRideRequest {
		t.Fatalf("notification = %+v", n)
	}
	if n.Message != "New ride request from Main Library to Airport" {
		t.Fatalf("message = %q", n.Message)
	}
	if n.EntityID == nil || *n.EntityID != req.ID {
		t.Fatalf("entity id = %v, want %s", n.EntityID, req.ID)
	}
}

func TestSubmitRequestWithoutOriginCoordinate(t *testing.T) {
	ctx := context.Background()

	t.Run("geocoded", func(t *testing.T) {
		e := newEnv(t, nil, staticGeocoder{"Main Library": campus})
		if _, err := e.registry.RecordHeartbeat(ctx, e.driver.ID, campus.Latitude, campus.Longitude); err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}

		d := e.draft()
		d.OriginCoord = nil
		if _, err := e.svc.SubmitRequest(ctx, e.rider, d); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		e.svc.Wait()

		if got := len(e.notes.sent()); got != 1 {
			t.Fatalf("sent %d notifications, want 1", got)
		}
	})

	t.Run("no geocoder", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		if _, err := e.registry.RecordHeartbeat(ctx, e.driver.ID, campus.Latitude, campus.Longitude); err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}

		d := e.draft()
		d.OriginCoord = nil
		if _, err := e.svc.SubmitRequest(ctx, e.rider, d); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		e.svc.Wait()

		if got := len(e.notes.sent()); got != 0 {
			t.Fatalf("sent %d notifications, want 0", got)
		}
	})
}

func TestNotificationFailureIsIsolated(t *testing.T) {
	for _, sink := range []*recorder{{err: errors.New("broker down")}, {panic: true}} {
		e := newEnv(t, sink, nil)
		ctx := context.Background()

		if _, err := e.registry.RecordHeartbeat(ctx, e.driver.ID, campus.Latitude, campus.Longitude); err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}

		req := e.submit(t)
		n, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 12, "")
		if err != nil {
			t.Fatalf("ProposeToDriver: %v", err)
		}
		if _, err := e.svc.AcceptFare(ctx, n.ID, e.rider); err != nil {
			t.Fatalf("AcceptFare: %v", err)
		}
		e.svc.Wait()
	}
}

func TestAcceptMatchesRequestAndOrphansSiblings(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	other := models.DriverProfile{ID: uuid.New(), Rating: 4.5, Verified: true}
	e.directory.Put(other)

	req := e.submit(t)

	first, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 10, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}
	second, err := e.svc.ProposeToDriver(ctx, req.ID, other.ID, other.ID, 9, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}

	first, err = e.svc.CounterOffer(ctx, first.ID, e.rider, 8, "")
	if err != nil {
		t.Fatalf("CounterOffer: %v", err)
	}
	accepted, err := e.svc.AcceptFare(ctx, first.ID, e.driver.ID)
	if err != nil {
		t.Fatalf("AcceptFare: %v", err)
	}
	if accepted.Status != types.NegotiationAccepted || *accepted.AcceptedFare != 8 {
		t.Fatalf("accepted = %s %.2f", accepted.Status, *accepted.AcceptedFare)
	}

	stored, err := e.svc.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if stored.Status != types.RequestMatched {
		t.Fatalf("request status = %s, want MATCHED", stored.Status)
	}

	_, err = e.svc.AcceptFare(ctx, second.ID, e.rider)
	if !errors.Is(err, types.ErrRequestNotPending) {
		t.Fatalf("accepting a sibling: got %v, want ErrRequestNotPending", err)
	}
	if !strings.Contains(err.Error(), string(types.RequestMatched)) {
		t.Fatalf("error %q does not carry the request status", err)
	}
	sibling, err := e.svc.GetNegotiation(ctx, second.ID, e.rider)
	if err != nil {
		t.Fatalf("GetNegotiation: %v", err)
	}
	if sibling.Status != types.NegotiationOpen || len(sibling.History) != 1 {
		t.Fatalf("sibling = %s with %d events, want untouched OPEN", sibling.Status, len(sibling.History))
	}

	if _, err := e.svc.ProposeToDriver(ctx, req.ID, other.ID, e.rider, 7, ""); !errors.Is(err, types.ErrRequestNotFound) {
		t.Fatalf("proposing on a matched request: got %v, want ErrRequestNotFound", err)
	}

	e.svc.Wait()
	var kinds []types.NotificationType
	for _, n := range e.notes.sent() {
		kinds = append(kinds, n.Type)
		if n.Type == types.NotificationOfferAccepted {
			if n.RecipientID != e.rider || n.Message != "Driver accepted the fare of $8.00" {
				t.Fatalf("accept notification = %+v", n)
			}
		}
	}
	if !containsType(kinds, types.NotificationOffer) || !containsType(kinds, types.NotificationOfferAccepted) {
		t.Fatalf("notification kinds = %v", kinds)
	}
}

func TestAcceptFareAfterSettlement(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	req := e.submit(t)

	n, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 10, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}
	if _, err := e.svc.AcceptFare(ctx, n.ID, e.rider); err != nil {
		t.Fatalf("AcceptFare: %v", err)
	}

	tests := []struct {
		name  string
		actor uuid.UUID
		want  error
	}{
		{"rider again", e.rider, types.ErrNotOpen},
		{"driver", e.driver.ID, types.ErrNotOpen},
		{"outsider", uuid.New(), types.ErrNotParticipant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.AcceptFare(ctx, n.ID, tc.actor)
			if !errors.Is(err, tc.want) {
				t.Fatalf("AcceptFare error = %v, want %v", err, tc.want)
			}
			if errors.Is(err, types.ErrRequestNotPending) {
				t.Fatalf("AcceptFare error = %v, must not report the request state", err)
			}
		})
	}

	_, err = e.svc.AcceptFare(ctx, n.ID, e.rider)
	if !strings.Contains(err.Error(), string(types.NegotiationAccepted)) {
		t.Fatalf("error %q does not carry the current status", err)
	}
}

func TestAcceptFareConcurrent(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	req := e.submit(t)

	n, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 12, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}

	const callers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = e.svc.AcceptFare(ctx, n.ID, e.rider)
		}()
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, types.ErrNotOpen):
		default:
			t.Fatalf("loser error = %v, want ErrNotOpen", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d accepts succeeded, want exactly 1", wins)
	}

	stored, err := e.svc.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if stored.Status != types.RequestMatched {
		t.Fatalf("request status = %s, want MATCHED", stored.Status)
	}
}

func containsType(kinds []types.NotificationType, want types.NotificationType) bool {
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func TestRejectFareNotifiesCounterparty(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	req := e.submit(t)

	n, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.rider, 6, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}
	if _, err := e.svc.RejectFare(ctx, n.ID, e.driver.ID, ""); err != nil {
		t.Fatalf("RejectFare: %v", err)
	}
	e.svc.Wait()

	var found bool
	for _, note := range e.notes.sent() {
		if note.Type == types.NotificationOfferRejected {
			found = true
			if note.RecipientID != e.rider || !strings.Contains(note.Message, "rejected the fare offer") {
				t.Fatalf("reject notification = %+v", note)
			}
		}
	}
	if !found {
		t.Fatal("no OFFER_REJECTED notification")
	}

	stored, _ := e.svc.GetRequest(ctx, req.ID)
	if stored.Status != types.RequestPending {
		t.Fatalf("request status = %s, want PENDING after a rejection", stored.Status)
	}
}

func TestProposeToDriverErrors(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	req := e.submit(t)

	if _, err := e.svc.ProposeToDriver(ctx, uuid.New(), e.driver.ID, e.rider, 5, ""); !errors.Is(err, types.ErrRequestNotFound) {
		t.Fatalf("unknown request: got %v", err)
	}
	if _, err := e.svc.ProposeToDriver(ctx, req.ID, uuid.New(), e.rider, 5, ""); !errors.Is(err, types.ErrDriverNotFound) {
		t.Fatalf("unknown driver: got %v", err)
	}
	if _, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.rider, 5, ""); err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}
	if _, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 5, ""); !errors.Is(err, types.ErrDuplicateNegotiation) {
		t.Fatalf("duplicate: got %v", err)
	}
}

func TestNegotiationVisibility(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	other := models.DriverProfile{ID: uuid.New(), Verified: true}
	e.directory.Put(other)
	req := e.submit(t)

	mine, err := e.svc.ProposeToDriver(ctx, req.ID, e.driver.ID, e.driver.ID, 5, "")
	if err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}
	if _, err := e.svc.ProposeToDriver(ctx, req.ID, other.ID, other.ID, 6, ""); err != nil {
		t.Fatalf("ProposeToDriver: %v", err)
	}

	all, err := e.svc.Negotiations(ctx, req.ID, e.rider)
	if err != nil || len(all) != 2 {
		t.Fatalf("rider view: %d negotiations, err %v", len(all), err)
	}
	own, err := e.svc.Negotiations(ctx, req.ID, e.driver.ID)
	if err != nil || len(own) != 1 || own[0].ID != mine.ID {
		t.Fatalf("driver view: %v, err %v", own, err)
	}
	if _, err := e.svc.GetNegotiation(ctx, mine.ID, other.ID); !errors.Is(err, types.ErrNotParticipant) {
		t.Fatalf("outsider view: got %v", err)
	}
}

func TestCancelRequest(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	req := e.submit(t)

	if _, err := e.svc.CancelRequest(ctx, uuid.New(), req.ID); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("cancel by stranger: got %v", err)
	}

	cancelled, err := e.svc.CancelRequest(ctx, e.rider, req.ID)
	if err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if cancelled.Status != types.RequestCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}

	if _, err := e.svc.CancelRequest(ctx, e.rider, req.ID); !errors.Is(err, types.ErrRequestNotPending) {
		t.Fatalf("second cancel: got %v", err)
	}
}

func TestListPendingRequests(t *testing.T) {
	e := newEnv(t, nil, nil)
	for range 5 {
		e.submit(t)
	}

	page, p, err := e.svc.ListPendingRequests(context.Background(), models.Page{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListPendingRequests: %v", err)
	}
	if len(page) != 2 || p.Total != 5 || !p.HasMore {
		t.Fatalf("page of %d, pagination %+v", len(page), p)
	}

	page, p, err = e.svc.ListPendingRequests(context.Background(), models.Page{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListPendingRequests: %v", err)
	}
	if len(page) != 1 || p.HasMore {
		t.Fatalf("last page of %d, pagination %+v", len(page), p)
	}
}

func TestCalculateFare(t *testing.T) {
	times := staticGeocoder{
		"Times Square": {Latitude: 40.7589, Longitude: -73.9851},
		"City Hall":    {Latitude: 40.7128, Longitude: -74.0060},
	}
	e := newEnv(t, nil, times)
	ctx := context.Background()
	five := 5.0

	tests := []struct {
		name     string
		q        models.FareQuery
		distance float64
		fare     float64
	}{
		{
			name:     "explicit distance",
			q:        models.FareQuery{DriverID: e.driver.ID, DistanceKm: &five},
			distance: 5,
			fare:     8.50,
		},
		{
			name: "coordinates",
			q: models.FareQuery{
				DriverID:    e.driver.ID,
				Origin:      models.Location{Coordinate: &models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}},
				Destination: models.Location{Coordinate: &models.Coordinate{Latitude: 40.7589, Longitude: -73.9851}},
			},
			distance: 5.42,
			fare:     9.00,
		},
		{
			name: "geocoded addresses",
			q: models.FareQuery{
				DriverID:    e.driver.ID,
				Origin:      models.Location{Address: "City Hall"},
				Destination: models.Location{Address: "Times Square"},
			},
			distance: 5.42,
			fare:     9.00,
		},
		{
			name:     "fallback",
			q:        models.FareQuery{DriverID: e.driver.ID, Origin: models.Location{Address: "Nowhere"}},
			distance: 5,
			fare:     8.50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := e.svc.CalculateFare(ctx, tt.q)
			if err != nil {
				t.Fatalf("CalculateFare: %v", err)
			}
			if quote.Breakdown.DistanceKm != tt.distance || quote.Breakdown.EstimatedFare != tt.fare {
				t.Fatalf("distance %.2f fare %.2f, want %.2f and %.2f", quote.Breakdown.DistanceKm, quote.Breakdown.EstimatedFare, tt.distance, tt.fare)
			}
			if quote.Driver.ID != e.driver.ID {
				t.Fatalf("quoted for %s", quote.Driver.ID)
			}
		})
	}

	if _, err := e.svc.CalculateFare(ctx, models.FareQuery{DriverID: uuid.New(), DistanceKm: &five}); !errors.Is(err, types.ErrDriverNotFound) {
		t.Fatalf("unknown driver: got %v", err)
	}
}

func TestNearbyRides(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	soon := time.Now().Add(time.Hour)

	post := func(origin models.Coordinate, dest *models.Coordinate) {
		t.Helper()
		_, err := e.svc.PostRide(ctx, e.driver.ID, models.RideDraft{
			Origin:        "A",
			Destination:   "B",
			OriginCoord:   origin,
			DestCoord:     dest,
			DepartureTime: soon,
			Seats:         3,
			FarePerSeat:   4,
		})
		if err != nil {
			t.Fatalf("PostRide: %v", err)
		}
	}

	farAway := models.Coordinate{Latitude: 42, Longitude: -71}
	post(models.Coordinate{Latitude: 40.75, Longitude: -74.0060}, nil)
	post(models.Coordinate{Latitude: 40.72, Longitude: -74.0060}, nil)
	post(farAway, &models.Coordinate{Latitude: 40.73, Longitude: -74.0060})
	post(farAway, nil)

	rides, p, err := e.svc.NearbyRides(ctx, campus.Latitude, campus.Longitude, 0, models.Page{})
	if err != nil {
		t.Fatalf("NearbyRides: %v", err)
	}
	if p.Total != 3 || len(rides) != 3 {
		t.Fatalf("got %d of %d rides, want 3", len(rides), p.Total)
	}
	for i := 1; i < len(rides); i++ {
		if rides[i-1].DistanceKm > rides[i].DistanceKm {
			t.Fatalf("rides not sorted by distance: %v then %v", rides[i-1].DistanceKm, rides[i].DistanceKm)
		}
	}
	if rides[1].DestCoord == nil {
		t.Fatal("ride matched by destination should be second")
	}

	rides, p, err = e.svc.NearbyRides(ctx, campus.Latitude, campus.Longitude, 0, models.Page{Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("NearbyRides: %v", err)
	}
	if len(rides) != 1 || p.HasMore {
		t.Fatalf("second page: %d rides, %+v", len(rides), p)
	}

	if _, _, err := e.svc.NearbyRides(ctx, 100, 0, 5, models.Page{}); !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Fatalf("invalid center: got %v", err)
	}
}

func TestPostRideValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, err := e.svc.PostRide(context.Background(), e.driver.ID, models.RideDraft{
		OriginCoord:   models.Coordinate{Latitude: 100},
		DepartureTime: time.Now().Add(-time.Hour),
	})

	var v *models.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	for _, field := range []string{"origin", "destination", "origin_coord", "departure_time", "seats"} {
		if _, ok := v.Fields[field]; !ok {
			t.Errorf("missing %q in %v", field, v.Fields)
		}
	}
}

func TestMapData(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	if _, err := e.registry.RecordHeartbeat(ctx, e.driver.ID, campus.Latitude, campus.Longitude); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	if _, err := e.svc.PostRide(ctx, e.driver.ID, models.RideDraft{
		Origin: "A", Destination: "B", OriginCoord: campus, DepartureTime: time.Now().Add(time.Hour), Seats: 2,
	}); err != nil {
		t.Fatalf("PostRide: %v", err)
	}

	data, err := e.svc.MapData(ctx, campus.Latitude, campus.Longitude, 0)
	if err != nil {
		t.Fatalf("MapData: %v", err)
	}
	if data.RadiusKm != DefaultConfig().NearbyRidesRadiusKm || len(data.Drivers) != 1 || len(data.Rides) != 1 {
		t.Fatalf("map data = radius %.1f, %d drivers, %d rides", data.RadiusKm, len(data.Drivers), len(data.Rides))
	}
}
