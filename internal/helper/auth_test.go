package helper

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	auth := SetupAuth("test-secret")

	token, err := auth.GenerateToken("admin", true, false, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Run("bare token", func(t *testing.T) {
		claims, err := auth.VerifyToken(token)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if claims.Username != "admin" || !claims.IsAdmin || claims.IsStore {
			t.Errorf("claims = %+v", claims)
		}
	})

	t.Run("bearer prefix", func(t *testing.T) {
		if _, err := auth.VerifyToken("Bearer " + token); err != nil {
			t.Errorf("VerifyToken with prefix: %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := SetupAuth("different-secret")
		if _, err := other.VerifyToken(token); err == nil {
			t.Error("token verified against the wrong secret")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if _, err := auth.VerifyToken(""); err == nil {
			t.Error("empty token verified")
		}
	})

	t.Run("empty username rejected", func(t *testing.T) {
		if _, err := auth.GenerateToken("", false, false, nil); err == nil {
			t.Error("generated token for empty username")
		}
	})

	t.Run("store claim carried", func(t *testing.T) {
		store := "Store One"
		token, err := auth.GenerateToken("store1", false, true, &store)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		claims, err := auth.VerifyToken(token)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if claims.StoreName == nil || *claims.StoreName != store {
			t.Errorf("store_name claim = %v, want %q", claims.StoreName, store)
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	auth := SetupAuth("test-secret")

	hash, err := auth.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Fatal("password stored in the clear")
	}

	if err := auth.VerifyPassword("s3cret-pw", hash); err != nil {
		t.Errorf("VerifyPassword with correct password: %v", err)
	}
	if err := auth.VerifyPassword("wrong", hash); err == nil {
		t.Error("wrong password accepted")
	}
}
