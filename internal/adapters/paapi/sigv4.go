package paapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const signingService = "ProductAdvertisingAPI"

// signer produces AWS Signature Version 4 headers for PA-API requests.
type signer struct {
	accessKey string
	secretKey string
	region    string
}

func newSigner(accessKey, secretKey, region string) *signer {
	return &signer{accessKey: accessKey, secretKey: secretKey, region: region}
}

// sign adds X-Amz-Date and Authorization headers to req. The body must
// match what will be sent.
func (s *signer) sign(req *http.Request, body []byte, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	req.Header.Set("X-Amz-Date", amzDate)

	// Canonical headers, sorted by lowercase name.
	headers := [][2]string{
		{"content-encoding", req.Header.Get("Content-Encoding")},
		{"content-type", req.Header.Get("Content-Type")},
		{"host", req.URL.Host},
		{"x-amz-date", amzDate},
		{"x-amz-target", req.Header.Get("X-Amz-Target")},
	}

	var canonicalHeaders strings.Builder
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		canonicalHeaders.WriteString(h[0] + ":" + strings.TrimSpace(h[1]) + "\n")
		names = append(names, h[0])
	}
	signedHeaders := strings.Join(names, ";")

	payloadHash := hexSHA256(body)
	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.Path,
		req.URL.RawQuery,
		canonicalHeaders.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, s.region, signingService, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signature := hex.EncodeToString(hmacSHA256(s.signingKey(dateStamp), []byte(stringToSign)))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.accessKey, scope, signedHeaders, signature,
	))
}

// signingKey derives the per-day signing key.
func (s *signer) signingKey(dateStamp string) []byte {
	k := hmacSHA256([]byte("AWS4"+s.secretKey), []byte(dateStamp))
	k = hmacSHA256(k, []byte(s.region))
	k = hmacSHA256(k, []byte(signingService))
	return hmacSHA256(k, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
