// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/wheretobuy/core"
)

// Each value is prefixed by a format byte so records written by an older
// generator run can be told apart.
const (
	productFormatV1   byte = 1
	placementFormatV1 byte = 1
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalProduct serializes a Product to bytes.
func MarshalProduct(p *core.Product) []byte {
	buf := make([]byte, 1+core.ProductMUS.Size(*p))
	buf[0] = productFormatV1
	n := core.ProductMUS.Marshal(*p, buf[1:])
	return buf[:1+n]
}

// UnmarshalProduct deserializes a Product from bytes.
func UnmarshalProduct(data []byte) (*core.Product, error) {
	body, err := versioned(data, productFormatV1)
	if err != nil {
		return nil, fmt.Errorf("%w: product: %w", ErrSerializationFailed, err)
	}
	p, _, err := core.ProductMUS.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: product: %w", ErrSerializationFailed, err)
	}
	p.InsertedAt = utc(p.InsertedAt)
	p.UpdatedAt = utc(p.UpdatedAt)
	return &p, nil
}

// MarshalPlacements serializes the ranked placements of one product.
func MarshalPlacements(places []core.Placement) []byte {
	size := 1 + varint.Int.Size(len(places))
	for i := range places {
		size += core.PlacementMUS.Size(places[i])
	}
	buf := make([]byte, size)
	buf[0] = placementFormatV1
	n := 1 + varint.Int.Marshal(len(places), buf[1:])
	for i := range places {
		n += core.PlacementMUS.Marshal(places[i], buf[n:])
	}
	return buf[:n]
}

// UnmarshalPlacements deserializes placements written by MarshalPlacements.
func UnmarshalPlacements(data []byte) ([]core.Placement, error) {
	body, err := versioned(data, placementFormatV1)
	if err != nil {
		return nil, fmt.Errorf("%w: placements: %w", ErrSerializationFailed, err)
	}
	count, n, err := varint.Int.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: placements: %w", ErrSerializationFailed, err)
	}
	// every placement takes at least one byte
	if count < 0 || count > len(body)-n {
		return nil, fmt.Errorf("%w: placements: %w: count %d", ErrSerializationFailed, ErrTruncatedData, count)
	}

	places := make([]core.Placement, 0, count)
	for i := 0; i < count; i++ {
		p, used, err := core.PlacementMUS.Unmarshal(body[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: placement %d: %w", ErrSerializationFailed, i, err)
		}
		n += used
		p.CreatedAt = utc(p.CreatedAt)
		places = append(places, p)
	}
	return places, nil
}

func versioned(data []byte, want byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	if data[0] != want {
		return nil, fmt.Errorf("unknown format version %d", data[0])
	}
	return data[1:], nil
}

// utc keeps the zero time zero and moves everything else to UTC.
func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
