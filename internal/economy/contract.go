package economy

// Contract is an export commitment to deliver a crop to a region.
type Contract struct {
	ID           string  `json:"id"`
	CropID       string  `json:"crop_id"`
	Quantity     int     `json:"quantity"`
	Delivered    int     `json:"delivered"`
	PricePerUnit float64 `json:"price_per_unit"`
	Region       string  `json:"region"`
	Start        int     `json:"start"`
	Duration     int     `json:"duration"`
	Fulfilled    bool    `json:"fulfilled"`
	Expired      bool    `json:"expired,omitempty"`
}

// Open reports whether deliveries are still accepted.
func (c *Contract) Open() bool {
	return !c.Fulfilled && !c.Expired
}

// Remaining is the quantity still owed.
func (c *Contract) Remaining() int {
	if r := c.Quantity - c.Delivered; r > 0 {
		return r
	}
	return 0
}

// Deliver records amount units and returns the units accepted and the
// payment due. Deliveries beyond the remaining quantity are not accepted.
func (c *Contract) Deliver(amount int) (int, float64) {
	if !c.Open() || amount <= 0 {
		return 0, 0
	}
	if r := c.Remaining(); amount > r {
		amount = r
	}
	c.Delivered += amount
	if c.Delivered >= c.Quantity {
		c.Fulfilled = true
	}
	return amount, round2(float64(amount) * c.PricePerUnit)
}

// ExpireContracts marks open contracts past their deadline as expired and
// returns how many changed.
func ExpireContracts(contracts []Contract, now int) int {
	n := 0
	for i := range contracts {
		c := &contracts[i]
		if c.Open() && now > c.Start+c.Duration {
			c.Expired = true
			n++
		}
	}
	return n
}
