package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const signatureParam = "signature"

// Param is one key/value pair of a canonical query.
type Param struct {
	Key   string
	Value string
}

// OrderParams drops nil values, sorts the remaining keys and appends the
// signature, if any, after everything else.
func OrderParams(data map[string]any) []Param {
	params := make([]Param, 0, len(data))
	var signature string
	hasSignature := false
	for key, value := range data {
		if value == nil {
			continue
		}
		if key == signatureParam {
			hasSignature = true
			signature = stringify(value)
			continue
		}
		params = append(params, Param{Key: key, Value: stringify(value)})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })
	if hasSignature {
		params = append(params, Param{Key: signatureParam, Value: signature})
	}
	return params
}

// CanonicalQuery renders ordered params as "k1=v1&k2=v2".
func CanonicalQuery(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Signer produces the HMAC-SHA256 signature Binance expects on signed
// endpoints.
type Signer struct {
	apiKey string
	secret []byte
}

func NewSigner(apiKey, secret string) *Signer {
	return &Signer{apiKey: apiKey, secret: []byte(secret)}
}

// Sign returns the hex HMAC of query.
func (s *Signer) Sign(query string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignParams computes the signature over the canonical query of data (minus
// any stale signature) and stores it under "signature".
func (s *Signer) SignParams(data map[string]any) {
	delete(data, signatureParam)
	data[signatureParam] = s.Sign(CanonicalQuery(OrderParams(data)))
}
