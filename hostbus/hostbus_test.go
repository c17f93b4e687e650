// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hostbus

import (
	"strings"
	"testing"
)

func TestCheckAddr(t *testing.T) {
	for addr := uint(0x18); addr <= 0x1f; addr++ {
		if err := CheckAddr(addr); err != nil {
			t.Errorf("CheckAddr(0x%02x) = %v", addr, err)
		}
	}
	for _, addr := range []uint{0, 0x17, 0x20, 0x48} {
		if err := CheckAddr(addr); err == nil {
			t.Errorf("CheckAddr(0x%02x) accepted", addr)
		}
	}
}

func TestOpenSysfsMissing(t *testing.T) {
	_, err := Open(SysfsPrefix + "/nonexistent/i2c-99")
	if err == nil {
		t.Fatal("expected error opening a missing device")
	}
	if !strings.Contains(err.Error(), "sysfsbus") {
		t.Errorf("error %q does not come from sysfsbus", err)
	}
}
