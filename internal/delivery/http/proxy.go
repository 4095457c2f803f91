package http

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// ProxyHandler relays browser clients to the public registry endpoints.
// The registries do not send CORS headers, so web frontends cannot call
// them directly; the relay forwards the caller's own service key and
// passes the XML body through untouched.
type ProxyHandler struct {
	client      *http.Client
	foodBaseURL string
	certBaseURL string
}

// NewProxyHandler creates the relay with the two upstream base URLs.
func NewProxyHandler(foodBaseURL, certBaseURL string) *ProxyHandler {
	return &ProxyHandler{
		client:      &http.Client{Timeout: 15 * time.Second},
		foodBaseURL: foodBaseURL,
		certBaseURL: certBaseURL,
	}
}

// RelayFood forwards an allergen lookup to the food registry.
func (p *ProxyHandler) RelayFood(c *gin.Context) {
	p.relay(c, p.foodBaseURL+"/getFoodQrAllrgyInfo", 100)
}

// RelayCert forwards a certification lookup to the cert-image registry.
func (p *ProxyHandler) RelayCert(c *gin.Context) {
	p.relay(c, p.certBaseURL+"/getCertImgListService", 10)
}

func (p *ProxyHandler) relay(c *gin.Context, endpoint string, numOfRows int) {
	barcode := c.Query("barcode")
	serviceKey := c.Query("serviceKey")
	if barcode == "" || serviceKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "barcode and serviceKey are required",
		})
		return
	}

	params := url.Values{}
	params.Add("serviceKey", serviceKey)
	params.Add("pageNo", "1")
	params.Add("numOfRows", fmt.Sprintf("%d", numOfRows))
	params.Add("bar_cd", barcode)

	req, err := http.NewRequestWithContext(c.Request.Context(), "GET",
		endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build upstream request"})
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[Proxy] upstream request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registry request failed"})
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/xml; charset=utf-8"
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}
