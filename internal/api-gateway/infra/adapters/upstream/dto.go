package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
)

type itemDTO struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Price       flexFloat  `json:"price"`
	ImageURL    string     `json:"image_url"`
	Description string     `json:"description"`
}

func (d itemDTO) toEntity() entity.Item {
	return entity.Item{
		ID:          string(d.ID),
		Name:        d.Name,
		Price:       float64(d.Price),
		ImageURL:    d.ImageURL,
		Description: d.Description,
	}
}

// flexString accepts both JSON strings and numbers; the upstream is not
// consistent about identifier types.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts numbers and numeric strings such as "12.50". NaN and
// infinities are rejected.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	var n json.Number
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		n = json.Number(strings.TrimSpace(v))
	} else if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite number %q", string(n))
	}
	*f = flexFloat(v)
	return nil
}
