package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/evaluator"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/cache"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/rateplan"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/stays"
)

// MessageInput is one rate plan message, either inline XML or a URL to
// fetch it from.
type MessageInput struct {
	Name string `json:"name"`
	XML  string `json:"xml"`
	URL  string `json:"url"`
}

// EvaluateRequest represents an evaluation request
type EvaluateRequest struct {
	Messages []MessageInput `json:"messages" binding:"required,min=1"`
	Stays    string         `json:"stays" binding:"required"`
}

// PrecheckRequest represents a structural precheck request
type PrecheckRequest struct {
	Message MessageInput `json:"message" binding:"required"`
}

// resolveMessage turns a MessageInput into a parsed document. Inline XML
// wins over URL; fetching is only allowed when the config says so.
func resolveMessage(c *gin.Context, deps Deps, in MessageInput, i int) (evaluator.Message, bool) {
	name := in.Name
	if name == "" {
		name = fmt.Sprintf("message[%d]", i)
	}

	switch {
	case in.XML != "":
		doc, err := ota.Parse([]byte(in.XML))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("parsing %s: %v", name, err)})
			return evaluator.Message{}, false
		}
		return evaluator.Message{Name: name, Doc: doc}, true

	case in.URL != "":
		if !deps.Fetch.AllowRemote {
			c.JSON(http.StatusForbidden, gin.H{"error": "fetching messages from URLs is disabled"})
			return evaluator.Message{}, false
		}
		doc, err := ota.Fetch(c.Request.Context(), in.URL, ota.FetchConfig{
			Timeout:    deps.Fetch.Timeout,
			MaxRetries: deps.Fetch.MaxRetries,
			MaxBytes:   deps.Fetch.MaxBytes,
		})
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("fetching %s: %v", name, err)})
			return evaluator.Message{}, false
		}
		return evaluator.Message{Name: name, Doc: doc}, true

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s has neither xml nor url", name)})
		return evaluator.Message{}, false
	}
}

// EvaluateRatePlans returns a handler that runs the full evaluation and
// responds with the rendered report.
func EvaluateRatePlans(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EvaluateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		stayList := stays.Parse(req.Stays)
		if len(stayList) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no valid stays in the stay list"})
			return
		}

		msgs := make([]evaluator.Message, 0, len(req.Messages))
		raw := make([][]byte, 0, len(req.Messages))
		inlineOnly := true
		for i, in := range req.Messages {
			msg, ok := resolveMessage(c, deps, in, i)
			if !ok {
				return
			}
			msgs = append(msgs, msg)
			if in.XML == "" {
				inlineOnly = false
			} else {
				raw = append(raw, []byte(in.XML))
			}
		}

		runID := uuid.New().String()
		log := deps.Log.WithField("run_id", runID)

		// Remote messages can change between requests, so only fully
		// inline evaluations are cached.
		cacheable := deps.Cache != nil && inlineOnly
		var key string
		if cacheable {
			key = cache.ReportKey(raw, req.Stays)
			if report, err := deps.Cache.Get(c.Request.Context(), key); err == nil {
				c.JSON(http.StatusOK, gin.H{
					"run_id": runID,
					"report": string(report),
					"cached": true,
				})
				return
			} else if err != cache.ErrCacheMiss {
				log.Warn("report cache read failed", "error", err)
			}
		}

		res := evaluator.New(log).Evaluate(msgs, stayList)
		report := res.Render()

		summary := gin.H{
			"stays":    len(stayList),
			"messages": len(msgs),
		}
		for _, kind := range []evaluator.Kind{
			evaluator.KindMatch, evaluator.KindDenied, evaluator.KindNoMatch, evaluator.KindWarning,
		} {
			n := 0
			for _, entry := range res.Entries {
				if entry.Kind == kind {
					n++
				}
			}
			summary[string(kind)] = n
		}

		if cacheable {
			if err := deps.Cache.Set(c.Request.Context(), key, []byte(report), deps.CacheTTL); err != nil {
				log.Warn("report cache write failed", "error", err)
			}
		}

		log.Info("evaluation done",
			"stays", len(stayList), "messages", len(msgs), "entries", len(res.Entries))

		c.JSON(http.StatusOK, gin.H{
			"run_id":  runID,
			"report":  report,
			"summary": summary,
			"cached":  false,
		})
	}
}

// ratePlanFindings is the precheck outcome for one rate plan code.
type ratePlanFindings struct {
	Code      string   `json:"code"`
	RoomTypes []string `json:"room_types,omitempty"`
	Offers    gin.H    `json:"offers,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// PrecheckRatePlans returns a handler that runs the structural prechecks
// of a single message without pricing anything.
func PrecheckRatePlans(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PrecheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, ok := resolveMessage(c, deps, req.Message, 0)
		if !ok {
			return
		}

		codes, err := rateplan.PrecheckMessage(msg.Doc)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"hotel": msg.Doc.Hotel(),
				"error": err.Error(),
			})
			return
		}

		findings := make([]ratePlanFindings, 0, len(codes))
		for _, code := range codes {
			f := ratePlanFindings{Code: code}

			itcodes, err := rateplan.PrecheckRates(msg.Doc, code)
			if err != nil {
				f.Warnings = append(f.Warnings, err.Error())
			} else {
				f.RoomTypes = itcodes
			}

			offers, err := rateplan.ParseOffers(msg.Doc, code)
			if err != nil {
				f.Warnings = append(f.Warnings, err.Error())
			} else {
				f.Offers = gin.H{
					"free_nights": offers.FreeNights != nil,
					"family":      offers.Family != nil,
				}
			}

			findings = append(findings, f)
		}

		c.JSON(http.StatusOK, gin.H{
			"hotel":      msg.Doc.Hotel(),
			"rate_plans": findings,
		})
	}
}
