package compose

import (
	"strings"

	"evideo/internal/domain"
)

// ECardFields builds the text fields for the e-card paths: the contact
// name, positioned by the template's layout settings.
func ECardFields(settings domain.TemplateSettings, contact domain.ContactDetails) []TextField {
	return []TextField{{
		Text:  contact.Name,
		Style: settings.Name.WithDefaults(),
	}}
}

// NFC visiting cards use a fixed layout over the template: a large initial
// glyph and centered name up top, a right-aligned identity block, and
// left-aligned contact details at the bottom.
func NFCFields(contact domain.ContactDetails) []TextField {
	return []TextField{
		{
			Text:  nameInitial(contact.Name),
			Style: domain.TextStyle{X: 670, Y: 240, FontSize: 215, Color: "#e8bf62", Align: domain.AlignCenter, MaxWidth: 500, LineHeight: 44, TopAnchored: true},
		},
		{
			Text:  contact.Name,
			Style: domain.TextStyle{X: 670, Y: 330, FontSize: 45, Color: "#ffffff", Align: domain.AlignCenter, MaxWidth: 500, LineHeight: 44, TopAnchored: true},
		},
		{
			Text:  contact.Name,
			Style: domain.TextStyle{X: 900, Y: 670, FontSize: 40, Color: "#ffffff", Align: domain.AlignRight, MaxWidth: 500, LineHeight: 44, TopAnchored: true},
		},
		{
			Text:  contact.Speciality,
			Style: domain.TextStyle{X: 900, Y: 720, FontSize: 33, Color: "#ffffff", Align: domain.AlignRight, MaxWidth: 500, LineHeight: 34, TopAnchored: true},
		},
		{
			Text:  contact.ClinicName,
			Style: domain.TextStyle{X: 900, Y: 770, FontSize: 33, Color: "#ffffff", Align: domain.AlignRight, MaxWidth: 500, LineHeight: 30, TopAnchored: true},
		},
		{
			Text:  contact.ClinicAddress,
			Style: domain.TextStyle{X: 900, Y: 810, FontSize: 29, Color: "#ffffff", Align: domain.AlignRight, MaxWidth: 520, LineHeight: 30, TopAnchored: true},
		},
		{
			Text:  contact.ContactNo,
			Style: domain.TextStyle{X: 170, Y: 1025, FontSize: 22, Color: "#06403f", Align: domain.AlignLeft, MaxWidth: 300, LineHeight: 24, TopAnchored: true},
		},
		{
			Text:  contact.Email,
			Style: domain.TextStyle{X: 170, Y: 1070, FontSize: 22, Color: "#06403f", Align: domain.AlignLeft, MaxWidth: 300, LineHeight: 24, TopAnchored: true},
		},
	}
}

// NFCBackground selects the template background: the alternate artwork
// asset when the contact carries an email, the thumbnail otherwise.
func NFCBackground(artwork domain.Artwork, contact domain.ContactDetails) string {
	if contact.Email != "" && artwork.Video != "" {
		return artwork.Video
	}
	return artwork.Thumbnail
}

// nameInitial returns the first letter of the first name word that is not
// an honorific.
func nameInitial(name string) string {
	for _, part := range strings.Fields(name) {
		if strings.ToLower(part) == "dr." {
			continue
		}
		runes := []rune(part)
		if len(runes) > 0 {
			return string(runes[0])
		}
	}
	return ""
}
