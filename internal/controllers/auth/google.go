package authController

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"vitals/config"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// googleVerifier validates Google ID tokens against the tokeninfo
// endpoint and checks audience and issuer.
type googleVerifier struct {
	clientID string
	log      logger.Logger
}

func NewGoogleVerifier(config config.Config) TokenVerifier {
	return &googleVerifier{
		clientID: config.GoogleClientID,
		log:      logger.New("googleVerifier"),
	}
}

type tokenInfoResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Audience string `json:"aud"`
	Issuer   string `json:"iss"`
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (GoogleUser, error) {
	log := v.log.Function("Verify")

	agent := fiber.Get(googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken))
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return GoogleUser{}, log.Err("tokeninfo request failed", errs[0])
	}

	if code != fiber.StatusOK {
		return GoogleUser{}, log.Error("tokeninfo rejected token", "status", code)
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return GoogleUser{}, log.Err("failed to decode tokeninfo response", err)
	}

	if info.Audience != v.clientID {
		return GoogleUser{}, log.Error("token audience mismatch", "aud", info.Audience)
	}

	if info.Issuer != "accounts.google.com" && info.Issuer != "https://accounts.google.com" {
		return GoogleUser{}, fmt.Errorf("invalid issuer: %s", info.Issuer)
	}

	return GoogleUser{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
