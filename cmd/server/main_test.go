package main

import "testing"

func TestParseBindAddr(t *testing.T) {
	addr, err := parseBindAddr("127.0.0.1", "9000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q, want 127.0.0.1:9000", addr)
	}

	if _, err := parseBindAddr("not-an-ip", "9000"); err == nil {
		t.Fatal("expected error for invalid address")
	}
	if _, err := parseBindAddr("127.0.0.1", "notaport"); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
	if _, err := parseBindAddr("127.0.0.1", "70000"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	if _, err := parseBindAddr("::1", "9000"); err != nil {
		t.Fatalf("IPv6 address rejected: %v", err)
	}
}
