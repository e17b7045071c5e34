package upstream

import (
	"encoding/json"
)

// The upstream wraps payloads inconsistently: {"data": ...}, {"result": ...},
// a resource-named key ({"quotes": ...}, {"plans": ...}) or a bare value.
// Some envelopes also carry a "success" flag that can be false on a 2xx.
// All of that is decoded here so call sites see one shape.

type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// decodeEnvelope unwraps body into target, trying the generic envelope keys,
// then the caller-supplied resource keys, then the bare body itself.
// A success:false flag on a 2xx is surfaced as a rejected-payload error.
func decodeEnvelope(op string, body []byte, target any, resourceKeys ...string) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Success != nil && !*env.Success {
			return rejectedError(op, env.Message)
		}
		if len(env.Data) > 0 && tryUnmarshal(env.Data, target) {
			return nil
		}
		if len(env.Result) > 0 && tryUnmarshal(env.Result, target) {
			return nil
		}

		var keyed map[string]json.RawMessage
		if len(resourceKeys) > 0 && json.Unmarshal(body, &keyed) == nil {
			for _, key := range resourceKeys {
				if raw, ok := keyed[key]; ok && tryUnmarshal(raw, target) {
					return nil
				}
			}
		}
	}

	if tryUnmarshal(body, target) {
		return nil
	}
	return rejectedError(op, "")
}

func tryUnmarshal(raw json.RawMessage, target any) bool {
	if string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, target) == nil
}

// redirectURLKeys are the spellings the payment upstream has used for the
// hosted-checkout redirect, at the top level and nested one envelope deep.
var redirectURLKeys = []string{"paymentUrl", "payment_url", "redirectUrl", "redirect_url", "url", "checkoutUrl"}

// extractRedirectURL digs the hosted-payment redirect URL out of whichever
// envelope shape the purchase response used. Empty string when none found.
func extractRedirectURL(body []byte) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	return redirectFromMap(m, 0)
}

func redirectFromMap(m map[string]json.RawMessage, depth int) string {
	for _, key := range redirectURLKeys {
		if raw, ok := m[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	if depth >= 2 {
		return ""
	}
	for _, key := range []string{"data", "result", "payment"} {
		if raw, ok := m[key]; ok {
			var nested map[string]json.RawMessage
			if json.Unmarshal(raw, &nested) == nil {
				if s := redirectFromMap(nested, depth+1); s != "" {
					return s
				}
			}
		}
	}
	return ""
}
