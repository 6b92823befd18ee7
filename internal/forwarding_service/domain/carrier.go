package domain

// CarrierFamily classifies how a mobile carrier exposes forwarding control.
type CarrierFamily string

const (
	// FamilyGSM carriers accept star/hash dial codes with the destination number
	// bracketed inside the code.
	FamilyGSM CarrierFamily = "gsm"
	// FamilyCDMAStyle carriers accept short vertical service codes followed by the
	// destination number as a separate dialed sequence.
	FamilyCDMAStyle CarrierFamily = "cdma-style"
	// FamilyAppManaged carriers expose no dial-code grammar at all; forwarding is
	// configured through the carrier's own application.
	FamilyAppManaged CarrierFamily = "app-managed"
)

// CarrierProfile is an immutable catalog entry describing one supported carrier.
type CarrierProfile struct {
	Name                string        `json:"name"`
	Family              CarrierFamily `json:"family"`
	SupportsConditional bool          `json:"supports_conditional"`
	Notes               string        `json:"notes,omitempty"`
}
