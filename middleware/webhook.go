package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the gateway's HMAC of the raw webhook body.
const SignatureHeader = "X-Paystack-Signature"

const rawBodyKey = "webhook_raw_body"

// maxWebhookBody caps how much of a webhook request is buffered. Gateway
// events are a few KB; anything near this limit is not ours.
const maxWebhookBody = 1 << 20

// CaptureRawBody buffers the request body so the webhook handler can verify
// the signature over the exact bytes the gateway signed, then re-parse them.
func CaptureRawBody(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "VALIDATION", "message": "failed to read request body"}})
		c.Abort()
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	c.Set(rawBodyKey, body)
	c.Next()
}

// RawBody returns the bytes captured by CaptureRawBody.
func RawBody(c *gin.Context) []byte {
	if v, ok := c.Get(rawBodyKey); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}
