package tiers

// BundledThemeName is the stock theme a site falls back to when its tier
// loses custom theming.
const BundledThemeName = "default"

// PushAdminsDown demotes admins beyond the limit, keeping the
// longest-standing ones. Returns the demoted usernames.
func (e *Engine) PushAdminsDown(siteID uint, limit int) ([]string, error) {
	if limit == Unlimited {
		return nil, nil
	}
	admins, err := e.repos.User.ListAdminsBySite(siteID)
	if err != nil {
		return nil, err
	}
	if len(admins) <= limit {
		return nil, nil
	}

	over := admins[limit:]
	ids := make([]uint, len(over))
	names := make([]string, len(over))
	for i, u := range over {
		ids[i] = u.ID
		names[i] = u.Username
	}
	if _, err := e.repos.User.DemoteAdmins(siteID, ids); err != nil {
		return nil, err
	}
	return names, nil
}

// HideVideosAboveLimit moves the newest active videos beyond the limit back
// to unapproved and returns how many were hidden. Videos are never deleted
// by a downgrade.
func (e *Engine) HideVideosAboveLimit(siteID uint, limit int) (int64, error) {
	if limit == Unlimited {
		return 0, nil
	}
	return e.repos.Video.HideActiveAboveLimit(siteID, limit)
}

// SwitchToBundledThemeIfNeeded resets a custom theme when the target tier
// does not allow one. Returns the new theme name, or "" when nothing
// changed.
func (e *Engine) SwitchToBundledThemeIfNeeded(siteID uint, target Tier) (string, error) {
	if target.HasFeature(FeatureCustomTheme) {
		return "", nil
	}
	site, err := e.repos.Site.GetByID(siteID)
	if err != nil {
		return "", err
	}
	if site.ThemeName == "" || site.ThemeName == BundledThemeName {
		return "", nil
	}
	site.ThemeName = BundledThemeName
	if site.CustomCSS != "" && !target.HasFeature(FeatureCustomCSS) {
		site.CustomCSS = ""
	}
	if err := e.repos.Site.Update(site); err != nil {
		return "", err
	}
	return BundledThemeName, nil
}
