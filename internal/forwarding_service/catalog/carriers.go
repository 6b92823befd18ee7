package catalog

import "github.com/rentalops/telephony_services/internal/forwarding_service/domain"

// referenceCarriers is the versionable built-in carrier list, used when the state
// API's copy of the catalog is unreachable at startup. Keep entries alphabetical.
var referenceCarriers = []domain.CarrierProfile{
	{Name: "AT&T", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Boost Mobile", Family: domain.FamilyCDMAStyle, SupportsConditional: false,
		Notes: "No-answer forwarding not offered on prepaid plans."},
	{Name: "C Spire", Family: domain.FamilyCDMAStyle, SupportsConditional: true},
	{Name: "Consumer Cellular", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Cricket Wireless", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Google Fi", Family: domain.FamilyAppManaged, SupportsConditional: true,
		Notes: "All forwarding is configured in the Fi app or web console."},
	{Name: "H2O Wireless", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Metro by T-Mobile", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Mint Mobile", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Page Plus", Family: domain.FamilyCDMAStyle, SupportsConditional: false},
	{Name: "Red Pocket", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Republic Wireless", Family: domain.FamilyAppManaged, SupportsConditional: true,
		Notes: "Calls route through the Republic app; handset dial codes are ignored."},
	{Name: "Spectrum Mobile", Family: domain.FamilyCDMAStyle, SupportsConditional: true},
	{Name: "Straight Talk", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "T-Mobile", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "TextNow", Family: domain.FamilyAppManaged, SupportsConditional: false,
		Notes: "VoIP carrier; forwarding lives entirely in the TextNow app."},
	{Name: "Ting", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "TracFone", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "US Cellular", Family: domain.FamilyCDMAStyle, SupportsConditional: true},
	{Name: "Ultra Mobile", Family: domain.FamilyGSM, SupportsConditional: true},
	{Name: "Verizon", Family: domain.FamilyCDMAStyle, SupportsConditional: true},
	{Name: "Visible", Family: domain.FamilyAppManaged, SupportsConditional: false,
		Notes: "Forwarding toggles live in the Visible app only."},
	{Name: "Xfinity Mobile", Family: domain.FamilyAppManaged, SupportsConditional: true,
		Notes: "Managed through the Xfinity Mobile app."},
}
