package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parcel-delivery-api/handlers"
	"parcel-delivery-api/middleware"
	"parcel-delivery-api/mocks"
	"parcel-delivery-api/models"
	"parcel-delivery-api/services"
	"parcel-delivery-api/store/sqlstore"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	svc     *services.Services
	store   *sqlstore.Store
	gateway *mocks.MockPaymentGateway
	jwt     *middleware.JWTVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := sqlstore.Open("sqlite", ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := mocks.NewMockPaymentGateway(gomock.NewController(t))
	svc := services.New(st, gw, nil, services.Options{Logger: log})
	jwt := middleware.NewJWTVerifier(testSecret)

	r := gin.New()
	SetupRoutes(r, handlers.New(svc, st, log), jwt, svc.Users)
	return &testServer{t: t, router: r, svc: svc, store: st, gateway: gw, jwt: jwt}
}

func (s *testServer) token(email string) string {
	s.t.Helper()
	tok, err := s.jwt.GenerateToken(email, time.Hour)
	if err != nil {
		s.t.Fatalf("token: %v", err)
	}
	return tok
}

// do sends body as JSON and decodes the response into out when it is non-nil
func (s *testServer) do(method, path, token string, body, out any) int {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func (s *testServer) admin(email string) string {
	s.t.Helper()
	if err := s.svc.Users.PromoteAdmin(context.Background(), email); err != nil {
		s.t.Fatalf("promote: %v", err)
	}
	return s.token(email)
}

func (s *testServer) createParcel(createdBy string) string {
	s.t.Helper()
	var out struct {
		InsertedID string `json:"insertedId"`
	}
	code := s.do(http.MethodPost, "/parcels", "", map[string]any{
		"type":          "document",
		"title":         "Passport",
		"created_by":    createdBy,
		"cost":          150,
		"sender_name":   "Rahim",
		"receiver_name": "Karim",
	}, &out)
	if code != http.StatusCreated || out.InsertedID == "" {
		s.t.Fatalf("create parcel: %d %+v", code, out)
	}
	return out.InsertedID
}

func (s *testServer) createRider(email, district string) string {
	s.t.Helper()
	var out struct {
		InsertedID string `json:"insertedId"`
	}
	code := s.do(http.MethodPost, "/riders", "", map[string]any{
		"name": "Rider", "email": email, "district": district, "region": "Dhaka",
	}, &out)
	if code != http.StatusCreated {
		s.t.Fatalf("register rider: %d", code)
	}
	return out.InsertedID
}

type transitionBody struct {
	Message       string `json:"message"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	RoleUpdated   bool   `json:"roleUpdated"`
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	var health map[string]any
	if code := s.do(http.MethodGet, "/health", "", nil, &health); code != http.StatusOK || health["status"] != "healthy" {
		t.Errorf("health = %d %v", code, health)
	}
	if code := s.do(http.MethodGet, "/", "", nil, nil); code != http.StatusOK {
		t.Errorf("welcome = %d", code)
	}
	var info map[string]any
	if code := s.do(http.MethodGet, "/state-machine", "", nil, &info); code != http.StatusOK || info["parcel"] == nil {
		t.Errorf("state machine = %d %v", code, info)
	}
}

func TestCreateUserTwice(t *testing.T) {
	s := newTestServer(t)

	var first map[string]any
	if code := s.do(http.MethodPost, "/users", "", map[string]any{"email": "a@b.com", "role": "admin"}, &first); code != http.StatusCreated {
		t.Fatalf("first POST /users = %d", code)
	}
	if first["inserted"] != true || first["insertedId"] == "" {
		t.Errorf("first body = %v", first)
	}

	var second map[string]any
	if code := s.do(http.MethodPost, "/users", "", map[string]any{"email": "a@b.com"}, &second); code != http.StatusOK {
		t.Fatalf("second POST /users = %d", code)
	}
	if second["inserted"] != false || second["message"] != "User already exists" {
		t.Errorf("second body = %v", second)
	}

	var users []models.User
	s.do(http.MethodGet, "/users/search?email=A@B", "", nil, &users)
	if len(users) != 1 {
		t.Fatalf("search found %d users, want 1", len(users))
	}

	var role map[string]string
	if code := s.do(http.MethodGet, "/users/a@b.com/role", "", nil, &role); code != http.StatusOK || role["role"] != "user" {
		t.Errorf("role = %d %v, self-escalation must be ignored", code, role)
	}
}

func TestUserRoleRoutes(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin("boss@b.com")

	var created struct {
		InsertedID string `json:"insertedId"`
	}
	s.do(http.MethodPost, "/users", "", map[string]any{"email": "u@b.com"}, &created)

	path := "/users/" + created.InsertedID + "/role"
	if code := s.do(http.MethodPatch, path, "", map[string]any{"role": "admin"}, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", code)
	}
	if code := s.do(http.MethodPatch, path, s.token("u@b.com"), map[string]any{"role": "admin"}, nil); code != http.StatusForbidden {
		t.Errorf("non-admin = %d, want 403", code)
	}
	if code := s.do(http.MethodPatch, path, adminToken, map[string]any{"role": "rider"}, nil); code != http.StatusBadRequest {
		t.Errorf("invalid role = %d, want 400", code)
	}
	if code := s.do(http.MethodPatch, "/users/missing/role", adminToken, map[string]any{"role": "admin"}, nil); code != http.StatusNotFound {
		t.Errorf("unknown user = %d, want 404", code)
	}
	if code := s.do(http.MethodPatch, path, adminToken, map[string]any{"role": "admin"}, nil); code != http.StatusOK {
		t.Fatalf("promote = %d", code)
	}

	var role map[string]string
	s.do(http.MethodGet, "/users/u@b.com/role", "", nil, &role)
	if role["role"] != "admin" {
		t.Errorf("role = %v, want admin", role)
	}
	if code := s.do(http.MethodGet, "/users/ghost@b.com/role", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown email = %d, want 404", code)
	}
}

func TestParcelLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createParcel("a@b.com")

	var p models.Parcel
	if code := s.do(http.MethodGet, "/parcels/"+id, "", nil, &p); code != http.StatusOK {
		t.Fatalf("GET parcel = %d", code)
	}
	if p.PaymentStatus != models.PaymentUnpaid || p.DeliveryStatus != models.DeliveryPending {
		t.Errorf("new parcel is %s/%s, want unpaid/pending", p.PaymentStatus, p.DeliveryStatus)
	}

	if code := s.do(http.MethodPost, "/parcels", "", map[string]any{"title": "orphan"}, nil); code != http.StatusBadRequest {
		t.Errorf("parcel without owner = %d, want 400", code)
	}

	if code := s.do(http.MethodDelete, "/parcels/"+id, "", nil, nil); code != http.StatusOK {
		t.Errorf("delete = %d", code)
	}
	if code := s.do(http.MethodGet, "/parcels/"+id, "", nil, nil); code != http.StatusNotFound {
		t.Errorf("GET deleted = %d, want 404", code)
	}
	if code := s.do(http.MethodDelete, "/parcels/"+id, "", nil, nil); code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", code)
	}
}

func TestListParcelsScopesToCaller(t *testing.T) {
	s := newTestServer(t)
	s.createParcel("a@b.com")
	s.createParcel("a@b.com")
	s.createParcel("c@b.com")
	adminToken := s.admin("boss@b.com")

	if code := s.do(http.MethodGet, "/parcels", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", code)
	}

	var mine []models.Parcel
	if code := s.do(http.MethodGet, "/parcels", s.token("a@b.com"), nil, &mine); code != http.StatusOK || len(mine) != 2 {
		t.Errorf("own parcels = %d, %d items", code, len(mine))
	}
	if code := s.do(http.MethodGet, "/parcels?email=c@b.com", s.token("a@b.com"), nil, nil); code != http.StatusForbidden {
		t.Errorf("someone else's parcels = %d, want 403", code)
	}

	var all []models.Parcel
	s.do(http.MethodGet, "/parcels", adminToken, nil, &all)
	if len(all) != 3 {
		t.Errorf("admin sees %d parcels, want 3", len(all))
	}
	var theirs []models.Parcel
	s.do(http.MethodGet, "/parcels?email=c@b.com&payment_status=unpaid", adminToken, nil, &theirs)
	if len(theirs) != 1 {
		t.Errorf("admin filter returned %d parcels, want 1", len(theirs))
	}
}

func TestAssignRiderRoute(t *testing.T) {
	s := newTestServer(t)
	parcelID := s.createParcel("a@b.com")
	riderID := s.createRider("r@b.com", "Dhaka")

	if code := s.do(http.MethodPatch, "/parcels/"+parcelID+"/assign-rider", "", map[string]any{}, nil); code != http.StatusBadRequest {
		t.Errorf("missing riderId = %d, want 400", code)
	}
	if code := s.do(http.MethodPatch, "/parcels/"+parcelID+"/assign-rider", "", map[string]any{"riderId": riderID}, nil); code != http.StatusConflict {
		t.Errorf("pending rider = %d, want 409", code)
	}

	var p models.Parcel
	s.do(http.MethodGet, "/parcels/"+parcelID, "", nil, &p)
	if p.AssignedRider != nil || p.DeliveryStatus != models.DeliveryPending {
		t.Fatalf("failed assignment changed parcel: %+v", p)
	}

	s.do(http.MethodPatch, "/riders/approve/"+riderID, "", map[string]any{"email": "r@b.com"}, nil)
	var msg map[string]string
	if code := s.do(http.MethodPatch, "/parcels/"+parcelID+"/assign-rider", "", map[string]any{"riderId": riderID}, &msg); code != http.StatusOK {
		t.Fatalf("assign = %d %v", code, msg)
	}

	s.do(http.MethodGet, "/parcels/"+parcelID, "", nil, &p)
	if p.DeliveryStatus != models.DeliveryInTransit || p.AssignedRider == nil || *p.AssignedRider != riderID {
		t.Errorf("parcel after assign = %+v", p)
	}
	rider, _ := s.store.Riders().ByID(context.Background(), riderID)
	if rider.WorkStatus != models.WorkInDelivery {
		t.Errorf("rider work_status = %s, want in-delivery", rider.WorkStatus)
	}
}

func TestRiderApproval(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin("boss@b.com")
	s.do(http.MethodPost, "/users", "", map[string]any{"email": "r@b.com"}, nil)
	riderID := s.createRider("r@b.com", "Dhaka")

	var pending []models.Rider
	if code := s.do(http.MethodGet, "/riders/pending", s.token("r@b.com"), nil, nil); code != http.StatusForbidden {
		t.Errorf("pending as non-admin = %d, want 403", code)
	}
	if code := s.do(http.MethodGet, "/riders/pending", adminToken, nil, &pending); code != http.StatusOK || len(pending) != 1 {
		t.Errorf("pending = %d, %d items", code, len(pending))
	}

	var res transitionBody
	if code := s.do(http.MethodPatch, "/riders/approve/"+riderID, "", map[string]any{"email": "r@b.com"}, &res); code != http.StatusOK {
		t.Fatalf("approve = %d", code)
	}
	if res.MatchedCount != 1 || res.ModifiedCount != 1 || !res.RoleUpdated {
		t.Errorf("approve body = %+v", res)
	}
	var role map[string]string
	s.do(http.MethodGet, "/users/r@b.com/role", "", nil, &role)
	if role["role"] != "rider" {
		t.Errorf("role = %v, want rider", role)
	}

	res = transitionBody{}
	s.do(http.MethodPatch, "/riders/reject/"+riderID, "", nil, &res)
	if res.MatchedCount != 1 || res.ModifiedCount != 0 {
		t.Errorf("reject after approve = %+v, want modifiedCount 0", res)
	}

	var active []models.Rider
	s.do(http.MethodGet, "/riders/active", adminToken, nil, &active)
	if len(active) != 1 {
		t.Errorf("active = %d, want 1", len(active))
	}

	res = transitionBody{}
	s.do(http.MethodPatch, "/riders/deactivate/"+riderID, "", nil, &res)
	if res.ModifiedCount != 1 {
		t.Errorf("deactivate = %+v", res)
	}
	if code := s.do(http.MethodPatch, "/riders/reject/missing", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("reject unknown = %d, want 404", code)
	}
}

func TestAvailableRidersByDistrict(t *testing.T) {
	s := newTestServer(t)
	for _, r := range []struct{ email, district string }{
		{"d1@b.com", "Dhaka"}, {"d2@b.com", "Dhaka"}, {"c1@b.com", "Chattogram"},
	} {
		id := s.createRider(r.email, r.district)
		s.do(http.MethodPatch, "/riders/approve/"+id, "", nil, nil)
	}
	s.createRider("pending@b.com", "Dhaka")

	var dhaka []models.Rider
	s.do(http.MethodGet, "/riders/available?district=Dhaka", "", nil, &dhaka)
	if len(dhaka) != 2 {
		t.Fatalf("Dhaka riders = %d, want 2", len(dhaka))
	}
	for _, r := range dhaka {
		if r.District != "Dhaka" || r.Status != models.RiderApproved {
			t.Errorf("unexpected rider %+v", r)
		}
	}
	var all []models.Rider
	s.do(http.MethodGet, "/riders/available", "", nil, &all)
	if len(all) != 3 {
		t.Errorf("available = %d, want 3", len(all))
	}
}

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	parcelID := s.createParcel("a@b.com")

	s.gateway.EXPECT().CreateIntent(gomock.Any(), int64(15000), "usd").Return("pi_9_secret", nil)
	var intent map[string]string
	if code := s.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"amountInCents": 15000}, &intent); code != http.StatusOK {
		t.Fatalf("create intent = %d", code)
	}
	if intent["clientSecret"] != "pi_9_secret" {
		t.Errorf("intent = %v", intent)
	}
	if code := s.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"amountInCents": 0}, nil); code != http.StatusBadRequest {
		t.Errorf("zero intent = %d, want 400", code)
	}

	payment := map[string]any{
		"parcelId":      parcelID,
		"email":         "a@b.com",
		"amount":        150,
		"paymentMethod": "card",
		"transactionId": "pi_9",
	}
	var created map[string]string
	if code := s.do(http.MethodPost, "/payments", "", payment, &created); code != http.StatusCreated {
		t.Fatalf("POST /payments = %d %v", code, created)
	}
	if created["insertedId"] == "" {
		t.Errorf("body = %v", created)
	}

	var p models.Parcel
	s.do(http.MethodGet, "/parcels/"+parcelID, "", nil, &p)
	if p.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment_status = %s, want paid", p.PaymentStatus)
	}

	var again map[string]string
	if code := s.do(http.MethodPost, "/payments", "", payment, &again); code != http.StatusNotFound {
		t.Errorf("second payment = %d, want 404", code)
	}
	if again["message"] != "Parcel not found or already paid" {
		t.Errorf("second payment body = %v", again)
	}

	var ledger []models.Payment
	if code := s.do(http.MethodGet, "/payments?email=a@b.com", s.token("a@b.com"), nil, &ledger); code != http.StatusOK {
		t.Fatalf("GET /payments = %d", code)
	}
	if len(ledger) != 1 {
		t.Errorf("ledger = %d entries, want 1", len(ledger))
	}
	if code := s.do(http.MethodGet, "/payments?email=a@b.com", s.token("c@b.com"), nil, nil); code != http.StatusForbidden {
		t.Errorf("someone else's payments = %d, want 403", code)
	}
	if code := s.do(http.MethodPost, "/payments", "", map[string]any{"parcelId": parcelID}, nil); code != http.StatusBadRequest {
		t.Errorf("incomplete payment = %d, want 400", code)
	}
	// one transaction cannot pay for a second parcel
	otherID := s.createParcel("a@b.com")
	payment["parcelId"] = otherID
	var reused map[string]string
	if code := s.do(http.MethodPost, "/payments", "", payment, &reused); code != http.StatusConflict {
		t.Errorf("reused transaction = %d %v, want 409", code, reused)
	}
	s.do(http.MethodGet, "/parcels/"+otherID, "", nil, &p)
	if p.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("other parcel payment_status = %s, want unpaid", p.PaymentStatus)
	}
}
