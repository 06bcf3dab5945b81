package testutil

import (
	"strings"
	"testing"
)

func TestDBName(t *testing.T) {
	if got := DBName("TestLogin/wrong password"); got != "cvtest_TestLogin_wrong_password" {
		t.Errorf("DBName() = %q", got)
	}

	long := "TestTravelRequests_" + strings.Repeat("x", 80)
	a := DBName(long + "/case one")
	b := DBName(long + "/case two")
	if len(a) > 63 || len(b) > 63 {
		t.Errorf("names exceed 63 bytes: %d, %d", len(a), len(b))
	}
	if a == b {
		t.Error("long names sharing a prefix should stay distinct")
	}
	if DBName(long) != DBName(long) {
		t.Error("DBName should be deterministic")
	}
}
