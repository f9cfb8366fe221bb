package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"curriculo/internal/config"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer    = "curriculo"
	clockSkew = 5 * time.Second
)

var (
	// ErrWrongTokenType 表示令牌类型与用途不符（例如用刷新令牌访问接口）。
	ErrWrongTokenType = errors.New("wrong token type")
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService 用 RS256 签发与校验访问/刷新令牌。
type AuthService struct {
	privateKey *rsa.PrivateKey
	parser     *jwt.Parser
	keyFunc    jwt.Keyfunc
	ttl        map[string]time.Duration
	now        func() time.Time
}

// TokenPair 封装访问令牌与刷新令牌。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims 是令牌中的业务字段。两种令牌都带 jti，刷新令牌靠它吊销。
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewAuthService 解析 PEM 格式的密钥对。
func NewAuthService(privateKeyPEM, publicKeyPEM []byte, accessTTL, refreshTTL time.Duration) (*AuthService, error) {
	if len(privateKeyPEM) == 0 || len(publicKeyPEM) == 0 {
		return nil, errors.New("both private and public key pem are required")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}
	return newService(privateKey, publicKey, accessTTL, refreshTTL), nil
}

// NewEphemeralAuthService 生成一次性 RSA 密钥对，仅适用于本地开发：重启后旧令牌全部失效。
func NewEphemeralAuthService(accessTTL, refreshTTL time.Duration) (*AuthService, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return newService(key, &key.PublicKey, accessTTL, refreshTTL), nil
}

// NewFromConfig picks between configured keys and an ephemeral pair.
func NewFromConfig(cfg config.AuthConfig) (svc *AuthService, ephemeral bool, err error) {
	if cfg.PrivateKeyPEM == "" && cfg.PublicKeyPEM == "" {
		svc, err = NewEphemeralAuthService(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
		return svc, true, err
	}
	svc, err = NewAuthService([]byte(cfg.PrivateKeyPEM), []byte(cfg.PublicKeyPEM), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	return svc, false, err
}

func newService(priv *rsa.PrivateKey, pub *rsa.PublicKey, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		privateKey: priv,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		keyFunc: func(*jwt.Token) (any, error) { return pub, nil },
		ttl: map[string]time.Duration{
			TokenTypeAccess:  accessTTL,
			TokenTypeRefresh: refreshTTL,
		},
		now: time.Now,
	}
}

func (s *AuthService) mint(userID uint, tokenType string, now time.Time) (string, error) {
	claims := TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl[tokenType])),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// GenerateTokenPair 为用户签发一对新令牌。
func (s *AuthService) GenerateTokenPair(userID uint) (TokenPair, error) {
	now := s.now()
	access, err := s.mint(userID, TokenTypeAccess, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.mint(userID, TokenTypeRefresh, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateToken checks signature, issuer and expiry. Every failure wraps ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	var claims TokenClaims
	if _, err := s.parser.ParseWithClaims(tokenString, &claims, s.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing user or jti", ErrInvalidToken)
	}
	return &claims, nil
}

// ValidateTokenOfType is ValidateToken plus a check of the declared token type.
func (s *AuthService) ValidateTokenOfType(tokenString, tokenType string) (*TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: got %q", ErrWrongTokenType, claims.TokenType)
	}
	return claims, nil
}

func (s *AuthService) AccessTokenTTL() time.Duration  { return s.ttl[TokenTypeAccess] }
func (s *AuthService) RefreshTokenTTL() time.Duration { return s.ttl[TokenTypeRefresh] }
