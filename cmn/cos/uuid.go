// Package cos provides common low-level types and utilities shared by every
// package in this module.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

const (
	// Alphabet for generating UUIDs similar to the shortid.DEFAULT_ABC
	// NOTE: len(uuidABC) > 0x3f
	uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

	// MLCG32 is the xxhash seed used by init to derive the short-ID
	// generator's seed.
	MLCG32 = 1103515245

	LenShortID = 9 // UUID length, as per https://github.com/teris-io/shortid#id-length
	tooLongID  = 32
)

const mayOnlyContain = "may only contain letters, numbers, dashes (-), underscores (_)"

var sid *shortid.Shortid

func InitShortID(seed uint64) {
	sid = shortid.MustNew(4 /*worker*/, uuidABC, seed)
}

func init() {
	InitShortID(uint64(xxhash.Checksum64S(UnsafeB("fcopy"), MLCG32)))
}

// GenUUID generates a short, URL-safe, highly-likely-unique ID used for
// operation IDs (`subscribe_progress`/`cancel`).
func GenUUID() (uuid string) {
	var h, t string
	uuid = sid.MustGenerate()
	if !isAlpha(uuid[0]) {
		h = "A"
	}
	c := uuid[len(uuid)-1]
	if c == '-' || c == '_' {
		t = "a"
	}
	return h + uuid + t
}

func IsValidUUID(uuid string) bool {
	return len(uuid) >= LenShortID && IsAlphaNice(uuid)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNice reports whether s is letters/numbers with limited '-'/'_'.
func IsAlphaNice(s string) bool {
	l := len(s)
	if l > tooLongID {
		return false
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') {
			continue
		}
		if c != '-' && c != '_' {
			return false
		}
		if i == 0 || i == l-1 {
			return false
		}
	}
	return true
}

func CheckAlphaPlus(s, tag string) error {
	const tooLongName = 64
	l := len(s)
	if l > tooLongName {
		return fmt.Errorf("%s is too long: %d > %d(max length)", tag, l, tooLongName)
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		if c != '.' {
			return fmt.Errorf("%s is invalid: %s, and dots (.)", tag, mayOnlyContain)
		}
		if i < l-1 && s[i+1] == '.' {
			return fmt.Errorf("%s is invalid: %s, and dots (.)", tag, mayOnlyContain)
		}
	}
	return nil
}
