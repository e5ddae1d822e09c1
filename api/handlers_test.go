package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/config"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/cache"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/logger"
)

const sampleMessage = `<?xml version="1.0" encoding="UTF-8"?>
<OTA_HotelRatePlanNotifRQ xmlns="http://www.opentravel.org/OTA/2003/05">
  <RatePlans HotelCode="123" HotelName="Testhotel">
    <RatePlan RatePlanCode="std">
      <Rates>
        <Rate InvTypeCode="double" Start="2024-06-01" End="2024-06-30">
          <BaseByGuestAmts>
            <BaseByGuestAmt NumberOfGuests="2" AmountAfterTax="90"/>
          </BaseByGuestAmts>
        </Rate>
      </Rates>
    </RatePlan>
  </RatePlans>
</OTA_HotelRatePlanNotifRQ>`

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Log == nil {
		deps.Log = logger.New(logger.Config{Level: "error", Format: "text"})
	}
	if deps.Fetch.Timeout == 0 {
		deps.Fetch = config.TestConfig().FetchConfig
	}
	router := gin.New()
	RegisterRoutes(router, deps)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestHealth(t *testing.T) {
	router := testRouter(t, Deps{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestEvaluate(t *testing.T) {
	router := testRouter(t, Deps{})

	w, out := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
		Messages: []MessageInput{{Name: "plans.xml", XML: sampleMessage}},
		Stays:    "couple, 2024-06-01, 2024-06-04, 2",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["run_id"])
	assert.Equal(t, false, out["cached"])
	assert.Contains(t, out["report"], "EUR 270.00")

	summary := out["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["match"])
	assert.Equal(t, float64(0), summary["warning"])
}

func TestEvaluateBadRequests(t *testing.T) {
	router := testRouter(t, Deps{})

	t.Run("no messages", func(t *testing.T) {
		w, _ := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
			Stays: "couple, 2024-06-01, 2024-06-04, 2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no valid stays", func(t *testing.T) {
		w, out := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
			Messages: []MessageInput{{XML: sampleMessage}},
			Stays:    "# only a comment",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, out["error"], "no valid stays")
	})

	t.Run("message without xml or url", func(t *testing.T) {
		w, out := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
			Messages: []MessageInput{{Name: "empty"}},
			Stays:    "couple, 2024-06-01, 2024-06-04, 2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, out["error"], "neither xml nor url")
	})

	t.Run("malformed xml", func(t *testing.T) {
		w, _ := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
			Messages: []MessageInput{{XML: "<oops"}},
			Stays:    "couple, 2024-06-01, 2024-06-04, 2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEvaluateRemoteDisabled(t *testing.T) {
	deps := Deps{Fetch: config.FetchConfig{AllowRemote: false, Timeout: time.Second, MaxBytes: 1 << 20}}
	router := testRouter(t, deps)

	w, out := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
		Messages: []MessageInput{{URL: "http://example.com/plans.xml"}},
		Stays:    "couple, 2024-06-01, 2024-06-04, 2",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, out["error"], "disabled")
}

func TestEvaluateRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMessage))
	}))
	defer srv.Close()

	router := testRouter(t, Deps{})

	w, out := doJSON(t, router, "/api/v1/evaluate", EvaluateRequest{
		Messages: []MessageInput{{Name: "remote.xml", URL: srv.URL}},
		Stays:    "couple, 2024-06-01, 2024-06-04, 2",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out["report"], "EUR 270.00")
}

func TestEvaluateCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := testRouter(t, Deps{
		Cache:    cache.NewRedisCache(client, "rateplan"),
		CacheTTL: time.Minute,
	})

	req := EvaluateRequest{
		Messages: []MessageInput{{Name: "plans.xml", XML: sampleMessage}},
		Stays:    "couple, 2024-06-01, 2024-06-04, 2",
	}

	w, first := doJSON(t, router, "/api/v1/evaluate", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, first["cached"])

	w, second := doJSON(t, router, "/api/v1/evaluate", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, first["report"], second["report"])
}

func TestPrecheck(t *testing.T) {
	router := testRouter(t, Deps{})

	w, out := doJSON(t, router, "/api/v1/precheck", PrecheckRequest{
		Message: MessageInput{Name: "plans.xml", XML: sampleMessage},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Testhotel (123)", out["hotel"])

	plans := out["rate_plans"].([]interface{})
	require.Len(t, plans, 1)
	plan := plans[0].(map[string]interface{})
	assert.Equal(t, "std", plan["code"])
	assert.Equal(t, []interface{}{"double"}, plan["room_types"])
}

func TestPrecheckMessageError(t *testing.T) {
	router := testRouter(t, Deps{})

	badMessage := `<?xml version="1.0" encoding="UTF-8"?>
<OTA_HotelRatePlanNotifRQ xmlns="http://www.opentravel.org/OTA/2003/05">
  <RatePlans HotelCode="123" HotelName="Testhotel">
    <RatePlan RatePlanCode="dup"/>
    <RatePlan RatePlanCode="dup"/>
  </RatePlans>
</OTA_HotelRatePlanNotifRQ>`

	w, out := doJSON(t, router, "/api/v1/precheck", PrecheckRequest{
		Message: MessageInput{XML: badMessage},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, out["error"], "not unique")
}
