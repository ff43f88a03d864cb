// Command derivation_vector_gen prints derivation vectors for
// cross-implementation checks: fixed seeds and paths mapped to derived
// seeds, tweaks, key entropy, registry hashes and padded sizes.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/padding"
	"github.com/SkynetHQ/skynet-go/pathseed"
	"github.com/SkynetHQ/skynet-go/registry"
)

type pathVector struct {
	RootSeed   string `json:"rootSeed"`
	SubPath    string `json:"subPath"`
	FileSeed   string `json:"fileSeed"`
	Tweak      string `json:"tweak"`
	KeyEntropy string `json:"keyEntropy"`
}

type entryVector struct {
	Seed          string `json:"seed"`
	PublicKey     string `json:"publicKey"`
	DataKey       string `json:"dataKey"`
	HashedDataKey bool   `json:"hashedDataKey"`
	Data          string `json:"data"`
	Revision      uint64 `json:"revision"`
	Signature     string `json:"signature"`
}

type paddingVector struct {
	Size   uint64 `json:"size"`
	Padded uint64 `json:"padded"`
}

type vectors struct {
	Paths   []pathVector    `json:"paths"`
	Entries []entryVector   `json:"entries"`
	Padding []paddingVector `json:"padding"`
}

func testRoot(b byte) pathseed.DirectorySeed {
	var root pathseed.DirectorySeed
	for i := range root {
		root[i] = b
	}
	return root
}

func main() {
	var v vectors

	for _, tc := range []struct {
		rootByte byte
		subPath  string
	}{
		{0x01, "file.json"},
		{0x01, "a/b/c.json"},
		{0xA1, "deeply/nested/path/with/many/segments"},
	} {
		root := testRoot(tc.rootByte)
		fileSeed, err := root.DeriveFile(tc.subPath)
		if err != nil {
			panic(err)
		}
		ent := fileSeed.KeyEntropy()
		v.Paths = append(v.Paths, pathVector{
			RootSeed:   root.Hex(),
			SubPath:    tc.subPath,
			FileSeed:   fileSeed.Hex(),
			Tweak:      fileSeed.Tweak(),
			KeyEntropy: cryptoutil.ToHex(ent[:]),
		})
	}

	const seed = "0101010101010101010101010101010101010101010101010101010101010101"
	kp, err := keys.GenKeyPairFromSeed(seed)
	if err != nil {
		panic(err)
	}
	for _, tc := range []struct {
		dataKey       string
		hashedDataKey bool
		data          string
		revision      uint64
	}{
		{"app", false, "68656c6c6f", 0},
		{"app", false, "776f726c64", 1},
		{testRoot(0x01).Hex()[:64], true, "636964", 0},
	} {
		data, err := cryptoutil.FromHex("data", tc.data)
		if err != nil {
			panic(err)
		}
		se, err := registry.SignEntry(registry.Entry{
			DataKey:  tc.dataKey,
			Data:     data,
			Revision: tc.revision,
		}, tc.hashedDataKey, kp)
		if err != nil {
			panic(err)
		}
		v.Entries = append(v.Entries, entryVector{
			Seed:          seed,
			PublicKey:     kp.PublicKey,
			DataKey:       tc.dataKey,
			HashedDataKey: tc.hashedDataKey,
			Data:          tc.data,
			Revision:      tc.revision,
			Signature:     se.Signature,
		})
	}

	for _, size := range []uint64{0, 1, 1024, 5120, 107520, 312320, 359424, 1 << 20, 100 << 20} {
		padded, err := padding.PadFileSize(size)
		if err != nil {
			panic(err)
		}
		v.Padding = append(v.Padding, paddingVector{Size: size, Padded: padded})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
