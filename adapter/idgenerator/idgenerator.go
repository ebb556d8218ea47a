// Package idgenerator contains [domain.IDGenerator] implementations: random
// UUIDs by default, and KSUIDs when identifiers should sort by creation time.
package idgenerator

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

func newOptions(opts []Option) options {
	o := options{reader: rand.Reader, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IDGenerator implements [domain.IDGenerator] with version 4 UUIDs.
type IDGenerator struct {
	reader io.Reader
}

// NewIDGenerator implements [domain.IDGenerator].
func NewIDGenerator(opts ...Option) domain.IDGenerator {
	o := newOptions(opts)
	return &IDGenerator{reader: o.reader}
}

// GenerateID implements [domain.IDGenerator].
func (i *IDGenerator) GenerateID() (string, error) {
	id, err := uuid.NewRandomFromReader(i.reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// KSUIDGenerator implements [domain.IDGenerator] with KSUIDs, which sort by
// creation time.
type KSUIDGenerator struct {
	reader io.Reader
	now    func() time.Time
}

// NewKSUID returns a [domain.IDGenerator] creating KSUIDs.
func NewKSUID(opts ...Option) domain.IDGenerator {
	o := newOptions(opts)
	return &KSUIDGenerator{reader: o.reader, now: o.now}
}

// GenerateID implements [domain.IDGenerator].
func (k *KSUIDGenerator) GenerateID() (string, error) {
	payload := make([]byte, 16)
	if _, err := io.ReadFull(k.reader, payload); err != nil {
		return "", err
	}
	id, err := ksuid.FromParts(k.now(), payload)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
