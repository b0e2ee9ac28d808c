package domain

import (
	"encoding/json"
	"fmt"
)

// PendingRequest is the asset request being assembled across turns.
// Fields can only be filled in order: asset type, configuration, reason.
type PendingRequest struct {
	assetType     string
	configuration string
	reason        string
}

// AssetType returns the collected asset type, if any.
func (p *PendingRequest) AssetType() (string, bool) {
	return p.assetType, p.assetType != ""
}

// Configuration returns the collected configuration, if any.
func (p *PendingRequest) Configuration() (string, bool) {
	return p.configuration, p.configuration != ""
}

// Reason returns the collected reason, if any.
func (p *PendingRequest) Reason() (string, bool) {
	return p.reason, p.reason != ""
}

// SetAssetType starts a new request for the given asset type.
// Any configuration or reason from a previous cycle is discarded.
func (p *PendingRequest) SetAssetType(assetType string) error {
	if assetType == "" {
		return fmt.Errorf("%w: empty asset type", ErrOutOfOrder)
	}
	*p = PendingRequest{assetType: assetType}
	return nil
}

// SetConfiguration records the configuration. The asset type must already be set.
func (p *PendingRequest) SetConfiguration(configuration string) error {
	if p.assetType == "" {
		return fmt.Errorf("%w: configuration before asset type", ErrOutOfOrder)
	}
	if configuration == "" {
		return fmt.Errorf("%w: empty configuration", ErrOutOfOrder)
	}
	p.configuration = configuration
	p.reason = ""
	return nil
}

// SetReason records the reason. The configuration must already be set.
func (p *PendingRequest) SetReason(reason string) error {
	if p.configuration == "" {
		return fmt.Errorf("%w: reason before configuration", ErrOutOfOrder)
	}
	if reason == "" {
		return fmt.Errorf("%w: empty reason", ErrOutOfOrder)
	}
	p.reason = reason
	return nil
}

// Complete reports whether all three fields are filled.
func (p *PendingRequest) Complete() bool {
	return p.reason != ""
}

// Empty reports whether no field has been collected yet.
func (p *PendingRequest) Empty() bool {
	return p.assetType == ""
}

// Reset clears the request for a new cycle.
func (p *PendingRequest) Reset() {
	*p = PendingRequest{}
}

type pendingJSON struct {
	AssetType     string `json:"asset_type,omitempty"`
	Configuration string `json:"configuration,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

func (p PendingRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(pendingJSON{
		AssetType:     p.assetType,
		Configuration: p.configuration,
		Reason:        p.reason,
	})
}

// UnmarshalJSON replays the setters so a decoded request keeps the fill-order invariant.
func (p *PendingRequest) UnmarshalJSON(data []byte) error {
	var raw pendingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out PendingRequest
	if raw.AssetType != "" {
		if err := out.SetAssetType(raw.AssetType); err != nil {
			return err
		}
	}
	if raw.Configuration != "" {
		if err := out.SetConfiguration(raw.Configuration); err != nil {
			return err
		}
	}
	if raw.Reason != "" {
		if err := out.SetReason(raw.Reason); err != nil {
			return err
		}
	}
	*p = out
	return nil
}
