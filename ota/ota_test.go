package ota

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMsg = `<?xml version="1.0" encoding="UTF-8"?>
<OTA_HotelRatePlanNotifRQ xmlns="http://www.opentravel.org/OTA/2003/05">
  <RatePlans HotelCode="123" HotelName="Hotel Enzian">
    <RatePlan RatePlanCode="standard">
      <Rates>
        <Rate InvTypeCode="double" Start="2024-06-01" End="2024-06-30">
          <BaseByGuestAmts>
            <BaseByGuestAmt NumberOfGuests="2" AmountAfterTax="90"/>
          </BaseByGuestAmts>
        </Rate>
        <Rate InvTypeCode="single" Start="2024-06-01" End="2024-06-30"/>
      </Rates>
    </RatePlan>
    <RatePlan RatePlanCode="special">
      <Rates/>
    </RatePlan>
  </RatePlans>
</OTA_HotelRatePlanNotifRQ>`

func TestParseAndNavigate(t *testing.T) {
	doc, err := Parse([]byte(sampleMsg))
	require.NoError(t, err)

	plans := doc.RatePlans()
	require.Len(t, plans, 2)
	assert.Equal(t, "standard", plans[0].AttrValue("RatePlanCode"))
	assert.Equal(t, "special", plans[1].AttrValue("RatePlanCode"))

	rates := plans[0].Descendants("Rate")
	require.Len(t, rates, 2)
	assert.Equal(t, "double", rates[0].AttrValue("InvTypeCode"))
	assert.Equal(t, "single", rates[1].AttrValue("InvTypeCode"))

	base := rates[0].Descendants("BaseByGuestAmt")
	require.Len(t, base, 1)
	assert.Equal(t, "90", base[0].AttrValue("AmountAfterTax"))

	_, ok := rates[1].Attr("UnitMultiplier")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("this is not xml <"))
	assert.Error(t, err)
}

func TestHotel(t *testing.T) {
	doc, err := Parse([]byte(sampleMsg))
	require.NoError(t, err)
	assert.Equal(t, "Hotel Enzian (123)", doc.Hotel())

	doc, err = Parse([]byte(`<OTA_HotelRatePlanNotifRQ><RatePlans HotelCode="123"/></OTA_HotelRatePlanNotifRQ>`))
	require.NoError(t, err)
	assert.Equal(t, "123", doc.Hotel())

	doc, err = Parse([]byte(`<OTA_HotelRatePlanNotifRQ><RatePlans/></OTA_HotelRatePlanNotifRQ>`))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Hotel())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMsg))
	}))
	defer srv.Close()

	doc, err := Fetch(context.Background(), srv.URL, FetchConfig{})
	require.NoError(t, err)
	assert.Len(t, doc.RatePlans(), 2)
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, FetchConfig{})
	assert.Error(t, err)
}
