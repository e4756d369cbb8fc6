package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"task-tracker-backend/pkg/models"
)

const testSecret = "test-secret"

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(now time.Time) *JWTService {
	return NewJWTService(testSecret, WithClock(fixedClock(now)))
}

func issue(t *testing.T, userID string) string {
	t.Helper()
	tok, err := newTestService(epoch).GenerateToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.TokenClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func validClaims() *models.TokenClaims {
	return &models.TokenClaims{
		Issuer:   TokenIssuer,
		Audience: TokenAudience,
		Iat:      epoch.Unix(),
		Exp:      epoch.Add(time.Hour).Unix(),
		UserID:   "user-1",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"user-1", "6f1c2a4e-0b7d-4f55-9c1e-1f2d3c4b5a69", "ü"} {
		tok := issue(t, id)
		claims, err := newTestService(epoch.Add(time.Minute)).ValidateToken(tok)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if claims.UserID != id {
			t.Fatalf("user id mismatch: %s != %s", claims.UserID, id)
		}
		if claims.Issuer != TokenIssuer || claims.Audience != TokenAudience {
			t.Fatalf("unexpected iss/aud: %s %s", claims.Issuer, claims.Audience)
		}
		if got := time.Duration(claims.Exp-claims.Iat) * time.Second; got != TokenLifetime {
			t.Fatalf("unexpected lifetime: %s", got)
		}
	}
}

func TestTokenWireFormat(t *testing.T) {
	t.Parallel()

	tok := issue(t, "user-1")
	if strings.ContainsAny(tok, "=+/") {
		t.Fatalf("token is not unpadded base64url: %s", tok)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	decode := func(seg string) map[string]interface{} {
		buf, err := base64.RawURLEncoding.DecodeString(seg)
		if err != nil {
			t.Fatal(err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(buf, &m); err != nil {
			t.Fatal(err)
		}
		return m
	}

	header := decode(parts[0])
	if header["alg"] != "HS256" || header["typ"] != "JWT" {
		t.Fatalf("unexpected header: %v", header)
	}

	payload := decode(parts[1])
	if payload["iss"] != "task-tracker-backend" {
		t.Fatalf("unexpected iss: %v", payload["iss"])
	}
	if payload["aud"] != "task-tracker-frontend" {
		t.Fatalf("aud must be a plain string: %#v", payload["aud"])
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	iat, _ := payload["iat"].(float64)
	exp, _ := payload["exp"].(float64)
	if int64(iat) != epoch.Unix() || int64(exp) != epoch.Add(90*24*time.Hour).Unix() {
		t.Fatalf("unexpected iat/exp: %v %v", iat, exp)
	}
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	tok := issue(t, "user-1")
	samples := [...]struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"fresh", epoch, true},
		{"day 89", epoch.Add(89 * 24 * time.Hour), true},
		{"at exp", epoch.Add(TokenLifetime), false},
		{"day 91", epoch.Add(91 * 24 * time.Hour), false},
	}

	for i := range samples {
		s := samples[i]
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestService(s.at).ValidateToken(tok)
			if s.valid && err != nil {
				t.Fatalf("expected valid token: %v", err)
			}
			if !s.valid && !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenRejected(t *testing.T) {
	t.Parallel()

	good := issue(t, "user-1")
	parts := strings.Split(good, ".")

	tamperedSig := func() string {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		return parts[0] + "." + parts[1] + "." + string(sig)
	}()

	tamperedPayload := func() string {
		buf, _ := base64.RawURLEncoding.DecodeString(parts[1])
		var m map[string]interface{}
		json.Unmarshal(buf, &m)
		m["user_id"] = "admin"
		buf, _ = json.Marshal(m)
		return parts[0] + "." + base64.RawURLEncoding.EncodeToString(buf) + "." + parts[2]
	}()

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := validClaims()
	wrongAudience.Audience = "other-frontend"
	noExp := validClaims()
	noExp.Exp = 0
	noUser := validClaims()
	noUser.UserID = ""

	samples := [...]struct {
		name, token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", good + ".xyz"},
		{"not base64", "!!!.###.$$$"},
		{"payload not json", parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + "." + parts[2]},
		{"tampered signature", tamperedSig},
		{"tampered payload", tamperedPayload},
		{"stripped signature", parts[0] + "." + parts[1] + "."},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims())},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience)},
		{"missing exp", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExp)},
		{"missing user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noUser)},
		{"HS512", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
	}

	svc := newTestService(epoch)
	for i := range samples {
		s := samples[i]
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()

			claims, err := svc.ValidateToken(s.token)
			if err != ErrInvalidToken {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
			if claims != nil {
				t.Fatalf("expected no claims, got %+v", claims)
			}
		})
	}
}

func TestGenerateTokenEmptyUser(t *testing.T) {
	t.Parallel()

	if _, err := newTestService(epoch).GenerateToken(""); err == nil {
		t.Fatal("expected error")
	}
}
