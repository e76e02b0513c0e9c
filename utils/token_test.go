package utils

import "testing"

func TestDeviceTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateDeviceToken("device-1234")
	if err != nil {
		t.Fatalf("GenerateDeviceToken() error = %v", err)
	}

	deviceID, err := ParseDeviceToken(token)
	if err != nil {
		t.Fatalf("ParseDeviceToken() error = %v", err)
	}
	if deviceID != "device-1234" {
		t.Errorf("ParseDeviceToken() = %q, want %q", deviceID, "device-1234")
	}
}

func TestParseDeviceTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateDeviceToken("device-1234")
	if err != nil {
		t.Fatalf("GenerateDeviceToken() error = %v", err)
	}

	t.Setenv("JWT_SECRET", "second-secret")
	if _, err := ParseDeviceToken(token); err == nil {
		t.Error("expected token signed with a different secret to fail")
	}
}

func TestGenerateDeviceTokenMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateDeviceToken("device-1234"); err == nil {
		t.Error("expected an error when JWT_SECRET is unset")
	}
}

func TestParseDeviceTokenGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := ParseDeviceToken("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}
