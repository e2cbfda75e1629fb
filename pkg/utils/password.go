// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/akamensky/base58"
)

// passwordEntropyBytes gives passwords of about 24 base58 characters.
const passwordEntropyBytes = 18

// RandomPassword returns an unguessable password. Accounts created by the
// import sign in through federation, so the password is never shown to anyone.
func RandomPassword() (string, error) {
	b := make([]byte, passwordEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base58.Encode(b), nil
}
