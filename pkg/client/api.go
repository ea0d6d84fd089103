package client

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// CustomerCandidate is the shape returned by the customer email search.
type CustomerCandidate struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Vehicle is the wire shape of an inventory unit.
type Vehicle struct {
	ID         string   `json:"id"`
	VIN        string   `json:"vin"`
	Make       string   `json:"make"`
	Model      string   `json:"model"`
	Year       int      `json:"year"`
	Price      float64  `json:"price"`
	Status     string   `json:"status"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	CustomerID *string  `json:"customerId,omitempty"`
}

// VehicleLocation is the locator projection for the map screen.
type VehicleLocation struct {
	ID        string  `json:"id"`
	VIN       string  `json:"vin"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Activity is one audit trail entry.
type Activity struct {
	ID         string         `json:"id"`
	ActorName  string         `json:"actorName"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	var envelope struct {
		Data struct {
			User *UserProfile `json:"user"`
			Auth struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"auth"`
		} `json:"data"`
	}

	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Auth.AccessToken == "" || envelope.Data.User == nil {
		return nil, &MalformedResponseError{Path: "/auth/login", Detail: "missing token or user"}
	}

	c.session.SetTokens(envelope.Data.Auth.AccessToken, envelope.Data.Auth.RefreshToken)
	c.session.SetUser(envelope.Data.User)
	c.resetLogoutGuard()
	return envelope.Data.User, nil
}

// ActivateAccount redeems an activation token, setting the initial password
// and logging straight in.
func (c *Client) ActivateAccount(ctx context.Context, token, password string) (*UserProfile, error) {
	var envelope struct {
		Data struct {
			User *UserProfile `json:"user"`
			Auth struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"auth"`
		} `json:"data"`
	}

	body := map[string]string{"token": token, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/account-activation", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Auth.AccessToken == "" || envelope.Data.User == nil {
		return nil, &MalformedResponseError{Path: "/auth/account-activation", Detail: "missing token or user"}
	}

	c.session.SetTokens(envelope.Data.Auth.AccessToken, envelope.Data.Auth.RefreshToken)
	c.session.SetUser(envelope.Data.User)
	c.resetLogoutGuard()
	return envelope.Data.User, nil
}

// Logout revokes the refresh token server-side and clears the session. The
// unauthenticated callback does not fire for a voluntary logout.
func (c *Client) Logout(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	if refreshToken != "" {
		body := map[string]string{"refreshToken": refreshToken}
		if err := c.Do(ctx, http.MethodPost, "/auth/logout", body, nil); err != nil {
			c.logger.Warn("server-side logout failed", zap.Error(err))
		}
	}
	c.session.Clear()
	return nil
}

// Me fetches the authenticated profile and refreshes the stored copy.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var envelope struct {
		Data *UserProfile `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, "/users/me", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, &MalformedResponseError{Path: "/users/me", Detail: "missing data"}
	}
	c.session.SetUser(envelope.Data)
	return envelope.Data, nil
}

// ProfileUpdate carries optional profile fields.
type ProfileUpdate struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// UpdateProfile edits the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	var envelope struct {
		Data *UserProfile `json:"data"`
	}
	if err := c.Do(ctx, http.MethodPatch, "/users/me", update, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, &MalformedResponseError{Path: "/users/me", Detail: "missing data"}
	}
	c.session.SetUser(envelope.Data)
	return envelope.Data, nil
}

// SearchCustomers resolves an email prefix to candidate customers.
func (c *Client) SearchCustomers(ctx context.Context, email string) ([]CustomerCandidate, error) {
	var candidates []CustomerCandidate
	path := "/customers/search?email=" + url.QueryEscape(email)
	if err := c.Do(ctx, http.MethodGet, path, nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// AssignCustomerInput is the assignment form payload.
type AssignCustomerInput struct {
	VehicleID   string `json:"vehicleId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// AssignCustomer finds or creates the customer and attaches it to a vehicle.
func (c *Client) AssignCustomer(ctx context.Context, input AssignCustomerInput) (*CustomerCandidate, error) {
	var envelope struct {
		Data *CustomerCandidate `json:"data"`
	}
	if err := c.Do(ctx, http.MethodPost, "/customers/customer", input, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, &MalformedResponseError{Path: "/customers/customer", Detail: "missing data"}
	}
	return envelope.Data, nil
}

// Vehicles lists inventory.
func (c *Client) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var envelope struct {
		Data []Vehicle `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, "/vehicles", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// VehicleLocations returns mapped units for the locator screen. Failures are
// logged and reported as an empty result: the map treats absence as empty
// state rather than blocking on read errors.
func (c *Client) VehicleLocations(ctx context.Context) []VehicleLocation {
	var envelope struct {
		Data []VehicleLocation `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, "/vehicles/locations", nil, &envelope); err != nil {
		c.logger.Warn("vehicle locations fetch failed", zap.Error(err))
		return nil
	}
	return envelope.Data
}

// RecentActivities returns the newest audit entries, best effort like
// VehicleLocations.
func (c *Client) RecentActivities(ctx context.Context) []Activity {
	var envelope struct {
		Data []Activity `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, "/activities", nil, &envelope); err != nil {
		c.logger.Warn("activities fetch failed", zap.Error(err))
		return nil
	}
	return envelope.Data
}
