package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hotellisting/hotellisting-api/application/port/inbound"
	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/logger"
)

// AuthUseCase composes credential checks, claim assembly, token issuance and
// refresh token rotation into the account operations. It holds no
// per-request state and is safe for concurrent use.
type AuthUseCase struct {
	identity      outbound.IdentityStore
	verifier      *CredentialVerifier
	assembler     *ClaimsAssembler
	issuer        outbound.TokenIssuer
	refreshTokens *RefreshTokenStore
	metrics       outbound.AuthMetrics
	logger        logger.Logger
	newUserID     func() string
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

func NewAuthUseCase(
	identity outbound.IdentityStore,
	issuer outbound.TokenIssuer,
	refreshTokens *RefreshTokenStore,
	metrics outbound.AuthMetrics,
	log logger.Logger,
) *AuthUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthUseCase{
		identity:      identity,
		verifier:      NewCredentialVerifier(identity),
		assembler:     NewClaimsAssembler(identity, identity),
		issuer:        issuer,
		refreshTokens: refreshTokens,
		metrics:       metrics,
		logger:        log,
		newUserID:     uuid.NewString,
	}
}

// Login returns (nil, nil) for an unknown email or a wrong password.
func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.AuthResponse, error) {
	start := time.Now()
	defer func() {
		logger.LogPerformance(ctx, uc.logger, "login", time.Since(start), nil)
	}()

	user, err := uc.verifier.Verify(ctx, req.Email, req.Password)
	if err != nil {
		uc.metrics.RecordLogin(false)
		if errors.Is(err, domainerr.ErrInvalidCredentials) {
			logger.LogAuthEvent(ctx, uc.logger, "login_failed", "", false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, nil
		}
		uc.logger.Error(ctx, "Failed to verify credentials", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, err
	}

	resp, err := uc.issueTokens(ctx, user, func(ctx context.Context) (string, bool, error) {
		raw, err := uc.refreshTokens.Rotate(ctx, user.ID)
		return raw, err == nil, err
	})
	if err != nil {
		uc.metrics.RecordLogin(false)
		uc.logger.Error(ctx, "Failed to issue tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	uc.metrics.RecordLogin(true)
	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, true, nil)
	return resp, nil
}

// Register creates a user in the default role.
func (uc *AuthUseCase) Register(ctx context.Context, req inbound.RegistrationRequest) ([]valueobject.IdentityError, error) {
	return uc.register(ctx, req, entity.DefaultRole.String())
}

// RegisterWithRole creates a user in req.Role. Whether the caller may grant
// that role is decided before this is called.
func (uc *AuthUseCase) RegisterWithRole(ctx context.Context, req inbound.RoleRegistrationRequest) ([]valueobject.IdentityError, error) {
	return uc.register(ctx, req.RegistrationRequest, req.Role)
}

func (uc *AuthUseCase) register(ctx context.Context, req inbound.RegistrationRequest, role string) ([]valueobject.IdentityError, error) {
	user := entity.NewUser(uc.newUserID(), req.FirstName, req.LastName, req.Email)

	identityErrs, err := uc.identity.Create(ctx, user, req.Password)
	if err != nil {
		uc.metrics.RecordRegistration(role, false)
		uc.logger.Error(ctx, "Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, domainerr.ErrStore("create user", err)
	}
	if len(identityErrs) > 0 {
		uc.metrics.RecordRegistration(role, false)
		logger.LogAuthEvent(ctx, uc.logger, "register_rejected", "", false, map[string]interface{}{
			"email":  req.Email,
			"errors": len(identityErrs),
		})
		return identityErrs, nil
	}

	if err := uc.identity.AddToRole(ctx, user, role); err != nil {
		uc.metrics.RecordRegistration(role, false)
		uc.removeUser(ctx, user)
		if errors.Is(err, outbound.ErrRoleNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "register_rejected", "", false, map[string]interface{}{
				"email": req.Email,
				"role":  role,
			})
			return []valueobject.IdentityError{valueobject.InvalidRoleName(role)}, nil
		}
		uc.logger.Error(ctx, "Failed to assign role", err, map[string]interface{}{
			"user_id": user.ID,
			"role":    role,
		})
		return nil, domainerr.ErrStore("add to role", err)
	}

	uc.metrics.RecordRegistration(role, true)
	logger.LogAuthEvent(ctx, uc.logger, "register_successful", user.ID, true, map[string]interface{}{
		"role": role,
	})
	return []valueobject.IdentityError{}, nil
}

// removeUser undoes a creation whose role assignment failed.
func (uc *AuthUseCase) removeUser(ctx context.Context, user *entity.User) {
	if err := uc.identity.Delete(ctx, user.ID); err != nil {
		uc.logger.Error(ctx, "Failed to remove partially registered user", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
}

// RefreshToken trades a matching refresh token for a new pair. A refresh
// token that does not match ends the session: the security stamp is rotated,
// the stored refresh token is dropped and (nil, nil) is returned.
func (uc *AuthUseCase) RefreshToken(ctx context.Context, req inbound.RefreshRequest) (*inbound.AuthResponse, error) {
	// the access token only names the user; its signature and expiry are not checked
	claims, err := uc.issuer.DecodeUnverified(req.Token)
	if err != nil {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeRejected)
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_unreadable", "MEDIUM", nil)
		return nil, err
	}
	email, ok := claims.First(entity.ClaimEmail)
	if !ok || email == "" {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeRejected)
		return nil, domainerr.ErrInvalidTokenDetails("access token has no email claim", nil)
	}

	user, err := uc.identity.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, outbound.ErrUserNotFound) {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeError)
		return nil, domainerr.ErrStore("find user by email", err)
	}
	if user == nil || user.ID != req.UserID {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeMismatch)
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_user_mismatch", "HIGH", map[string]interface{}{
			"claimed_user_id": req.UserID,
		})
		return nil, domainerr.ErrUserMismatchFor(req.UserID)
	}

	valid, err := uc.refreshTokens.Verify(ctx, user.ID, req.RefreshToken)
	if err != nil {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeError)
		return nil, err
	}
	if !valid {
		if err := uc.endSession(ctx, user); err != nil {
			uc.metrics.RecordRefresh(outbound.RefreshOutcomeError)
			return nil, err
		}
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeRejected)
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_rejected", "HIGH", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil
	}

	resp, err := uc.issueTokens(ctx, user, func(ctx context.Context) (string, bool, error) {
		return uc.refreshTokens.Exchange(ctx, user.ID, req.RefreshToken)
	})
	if err != nil {
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeError)
		uc.logger.Error(ctx, "Failed to issue tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	if resp == nil {
		// another refresh consumed the same token between Verify and Exchange
		uc.metrics.RecordRefresh(outbound.RefreshOutcomeRaced)
		logger.LogAuthEvent(ctx, uc.logger, "token_refresh_raced", user.ID, false, nil)
		return nil, nil
	}

	uc.metrics.RecordRefresh(outbound.RefreshOutcomeIssued)
	logger.LogAuthEvent(ctx, uc.logger, "token_refresh_successful", user.ID, true, nil)
	return resp, nil
}

func (uc *AuthUseCase) endSession(ctx context.Context, user *entity.User) error {
	if err := uc.identity.UpdateSecurityStamp(ctx, user); err != nil {
		return domainerr.ErrStore("update security stamp", err)
	}
	return uc.refreshTokens.Revoke(ctx, user.ID)
}

// issueTokens runs assemble, issue and then the given refresh step, in that
// order. A refresh step reporting ok == false yields a nil response.
func (uc *AuthUseCase) issueTokens(
	ctx context.Context,
	user *entity.User,
	nextRefreshToken func(ctx context.Context) (string, bool, error),
) (*inbound.AuthResponse, error) {
	claims, err := uc.assembler.Assemble(ctx, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := uc.issuer.Issue(claims)
	if err != nil {
		return nil, domainerr.ErrInternalServerError("issue access token", err)
	}

	refreshToken, ok, err := nextRefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &inbound.AuthResponse{
		UserID:       user.ID,
		Token:        accessToken.Token,
		RefreshToken: refreshToken,
	}, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordLogin(bool)                {}
func (nopMetrics) RecordRegistration(string, bool) {}
func (nopMetrics) RecordRefresh(string)            {}
