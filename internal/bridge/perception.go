package bridge

import (
	"net/http"

	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/screen"
)

type readTextRequest struct {
	Region    screen.Region `json:"region"`
	Scale     int           `json:"scale"`
	Whitelist string        `json:"whitelist,omitempty"`
}

type textResponse struct {
	Text string `json:"text"`
}

type valueResponse struct {
	Value int `json:"value"`
}

type shopResponse struct {
	Offers []arena.ShopOffer `json:"offers"`
}

type benchResponse struct {
	Occupied []bool `json:"occupied"`
}

type itemsResponse struct {
	Items []string `json:"items"`
}

// ReadText recognizes the text inside region
func (c *Client) ReadText(region screen.Region, scale int, whitelist string) string {
	var resp textResponse
	in := readTextRequest{Region: region, Scale: scale, Whitelist: whitelist}
	if err := c.do(http.MethodPost, "/read/text", in, &resp); err != nil {
		c.logger.Warn("Bridge read failed", "path", "/read/text", "error", err)
		return ""
	}
	return resp.Text
}

func (c *Client) value(path string) int {
	var resp valueResponse
	if !c.get(path, &resp) {
		return 0
	}
	return resp.Value
}

func (c *Client) Gold() int { return c.value("/read/gold") }

func (c *Client) Level() int { return c.value("/read/level") }

func (c *Client) Health() int { return c.value("/read/health") }

// HeadlinerBitmask reads the trait flags of the headliner shop slot; 0 when it is a plain slot.
func (c *Client) HeadlinerBitmask() int { return c.value("/read/headliner") }

// ShopOffers returns the named champions in the shop. Empty or unreadable slots are omitted.
func (c *Client) ShopOffers() []arena.ShopOffer {
	var resp shopResponse
	if !c.get("/read/shop", &resp) {
		return nil
	}
	offers := resp.Offers[:0]
	for _, o := range resp.Offers {
		if o.Name == "" || o.Slot < 0 || o.Slot >= screen.ShopSlots {
			continue
		}
		offers = append(offers, o)
	}
	return offers
}

// BenchOccupancy reports which bench slots hold a unit, and false when the
// agent could not read the bench.
func (c *Client) BenchOccupancy() ([screen.BenchSlots]bool, bool) {
	var occupied [screen.BenchSlots]bool
	var resp benchResponse
	if !c.get("/read/bench", &resp) {
		return occupied, false
	}
	copy(occupied[:], resp.Occupied)
	return occupied, true
}

// FirstEmptyBenchSlot returns -1 when the bench is full or unreadable
func (c *Client) FirstEmptyBenchSlot() int {
	occupied, ok := c.BenchOccupancy()
	if !ok {
		return -1
	}
	for i, taken := range occupied {
		if !taken {
			return i
		}
	}
	return -1
}

// ItemPool reads the loose item slots, validating each name.
// Unrecognized slots come back empty.
func (c *Client) ItemPool() []string {
	var resp itemsResponse
	if !c.get("/read/items", &resp) {
		return make([]string, screen.ItemSlots)
	}
	pool := make([]string, screen.ItemSlots)
	for i, raw := range resp.Items {
		if i >= len(pool) {
			break
		}
		if item, ok := c.ValidateItemText(raw); ok {
			pool[i] = item
		}
	}
	return pool
}

// ValidateItemText matches recognized text against the known item names
func (c *Client) ValidateItemText(raw string) (string, bool) {
	if c.items == nil {
		return "", false
	}
	return c.items.ParseItem(raw)
}
