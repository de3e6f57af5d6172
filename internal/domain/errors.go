package domain

import "errors"

var (
	// ErrNotAuthorized signals that no credential has been bootstrapped yet;
	// resolved by visiting the authorization flow.
	ErrNotAuthorized = errors.New("credential: not authorized, visit /auth")
	// ErrRefreshFailed indicates the authorization server rejected a
	// refresh-token exchange.
	ErrRefreshFailed = errors.New("credential: token refresh failed")
	// ErrAuthExchangeFailed indicates the authorization-code exchange failed;
	// the code is single-use, so the flow must be restarted.
	ErrAuthExchangeFailed = errors.New("credential: authorization code exchange failed")
	// ErrOrderFetchFailed indicates the order lookup for a webhook resource
	// did not succeed.
	ErrOrderFetchFailed = errors.New("order: upstream fetch failed")
	// ErrDispatchFailed indicates the buyer message could not be delivered.
	ErrDispatchFailed = errors.New("message: dispatch failed")
)
