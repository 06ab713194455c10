package profile

// Patch carries optional updates to a profile. Nil fields are left
// unchanged; nil collections are not replaced.
type Patch struct {
	FirstName          *string     `json:"firstName"`
	LastName           *string     `json:"lastName"`
	DisplayName        *string     `json:"displayName"`
	Email              *string     `json:"email"`
	Bio                *string     `json:"bio"`
	ProfilePhoto       *string     `json:"profilePhoto"`
	CurrentPosition    *string     `json:"currentPosition"`
	CurrentInstitution *string     `json:"currentInstitution"`
	CurrentDepartment  *string     `json:"currentDepartment"`
	Website            *string     `json:"website"`
	Template           *Template   `json:"template"`
	Visibility         *Visibility `json:"visibility"`
	CustomDomain       *string     `json:"customDomain"`

	Publications *[]Publication `json:"publications"`
	Education    *[]Education   `json:"education"`
	Positions    *[]Position    `json:"positions"`
	Awards       *[]Award       `json:"awards"`
	Grants       *[]Grant       `json:"grants"`
	SocialLinks  *[]SocialLink  `json:"socialLinks"`
}

// ReplacesCollections reports whether any collection is present.
func (p Patch) ReplacesCollections() bool {
	return p.Publications != nil || p.Education != nil || p.Positions != nil ||
		p.Awards != nil || p.Grants != nil || p.SocialLinks != nil
}

// Apply returns a copy of base with the patch applied. Empty enum values
// are treated as absent.
func (p Patch) Apply(base Profile) Profile {
	setString(&base.FirstName, p.FirstName)
	setString(&base.LastName, p.LastName)
	setString(&base.DisplayName, p.DisplayName)
	setString(&base.Email, p.Email)
	setString(&base.Bio, p.Bio)
	setString(&base.ProfilePhoto, p.ProfilePhoto)
	setString(&base.CurrentPosition, p.CurrentPosition)
	setString(&base.CurrentInstitution, p.CurrentInstitution)
	setString(&base.CurrentDepartment, p.CurrentDepartment)
	setString(&base.Website, p.Website)
	setString(&base.CustomDomain, p.CustomDomain)
	if p.Template != nil && *p.Template != "" {
		base.Template = *p.Template
	}
	if p.Visibility != nil && *p.Visibility != "" {
		base.Visibility = *p.Visibility
	}
	if p.Publications != nil {
		base.Publications = append([]Publication(nil), (*p.Publications)...)
	}
	if p.Education != nil {
		base.Education = append([]Education(nil), (*p.Education)...)
	}
	if p.Positions != nil {
		base.Positions = append([]Position(nil), (*p.Positions)...)
	}
	if p.Awards != nil {
		base.Awards = append([]Award(nil), (*p.Awards)...)
	}
	if p.Grants != nil {
		base.Grants = append([]Grant(nil), (*p.Grants)...)
	}
	if p.SocialLinks != nil {
		base.SocialLinks = append([]SocialLink(nil), (*p.SocialLinks)...)
	}
	return base
}

func setString(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}
