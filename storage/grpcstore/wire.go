package grpcstore

import (
	"github.com/SkynetHQ/skynet-go/registry"
)

// Registry request/response payloads travel as JSON inside BytesValue
// wrappers. Data is base64 per encoding/json convention; the signature and
// keys stay in their hex string forms.

type entryRequest struct {
	PublicKey string `json:"publicKey"`
	DataKey   string `json:"dataKey"`
}

type wireEntry struct {
	PublicKey string `json:"publicKey,omitempty"`
	DataKey   string `json:"dataKey"`
	Data      []byte `json:"data"`
	Revision  uint64 `json:"revision"`
	Signature string `json:"signature"`
}

func toWire(publicKey string, se registry.SignedEntry) wireEntry {
	return wireEntry{
		PublicKey: publicKey,
		DataKey:   se.DataKey,
		Data:      se.Data,
		Revision:  se.Revision,
		Signature: se.Signature,
	}
}

func (w wireEntry) signedEntry() registry.SignedEntry {
	return registry.SignedEntry{
		Entry: registry.Entry{
			DataKey:  w.DataKey,
			Data:     w.Data,
			Revision: w.Revision,
		},
		Signature: w.Signature,
	}
}
