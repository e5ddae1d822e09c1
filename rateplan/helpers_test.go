package rateplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// msg wraps rate plan fragments in the OTA message envelope.
func msg(ratePlans string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<OTA_HotelRatePlanNotifRQ xmlns="http://www.opentravel.org/OTA/2003/05">
  <RatePlans HotelCode="123" HotelName="Testhotel">` + ratePlans + `</RatePlans>
</OTA_HotelRatePlanNotifRQ>`
}

func parseMsg(t *testing.T, ratePlans string) *ota.Document {
	t.Helper()
	doc, err := ota.Parse([]byte(msg(ratePlans)))
	require.NoError(t, err)
	return doc
}

func date(t *testing.T, s string) caldate.Date {
	t.Helper()
	d, err := caldate.Parse(s)
	require.NoError(t, err)
	return d
}

func testStay(t *testing.T, arrival, departure string, adults int, children ...int) Stay {
	t.Helper()
	return Stay{
		Name:      "test",
		Arrival:   date(t, arrival),
		Departure: date(t, departure),
		Adults:    adults,
		Children:  children,
	}
}
