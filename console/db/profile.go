package db

import "fmt"

// Profile is one setting of a user, such as a divider position.
type Profile struct {
	ID       int64  `xorm:"pk autoincr"`
	UserName string `xorm:"unique(setting)"`
	Setting  string `xorm:"unique(setting)"`
	Value    string
}

// Profile returns the value of a user setting.  ok is false when the user
// never set it.
func (conn *Connection) Profile(username, setting string) (string, bool, error) {
	p := &Profile{UserName: username, Setting: setting}
	has, err := conn.engine.Get(p)
	if err != nil {
		return "", false, fmt.Errorf("failed to get profile setting %q: %w", setting, err)
	}
	return p.Value, has, nil
}

// SetProfile stores the value of a user setting, replacing an earlier one.
func (conn *Connection) SetProfile(username, setting, value string) error {
	p := &Profile{UserName: username, Setting: setting}
	has, err := conn.engine.Get(p)
	if err != nil {
		return fmt.Errorf("failed to get profile setting %q: %w", setting, err)
	}
	p.Value = value
	if has {
		_, err = conn.engine.ID(p.ID).Cols("value").Update(p)
	} else {
		_, err = conn.engine.Insert(p)
	}
	if err != nil {
		return fmt.Errorf("failed to store profile setting %q: %w", setting, err)
	}
	return nil
}

// UserProfile returns all settings of a user.
func (conn *Connection) UserProfile(username string) (map[string]string, error) {
	var rows []Profile
	if err := conn.engine.Where("user_name = ?", username).Find(&rows); err != nil {
		return nil, fmt.Errorf("failed to list profile of %q: %w", username, err)
	}
	settings := make(map[string]string, len(rows))
	for _, p := range rows {
		settings[p.Setting] = p.Value
	}
	return settings, nil
}
