package models

import "gopkg.in/yaml.v3"

// UnmarshalYAML fills in NewElement defaults for fields the document omits,
// so hand-written page files need not repeat is_visible and is_enabled.
func (e *WebElement) UnmarshalYAML(value *yaml.Node) error {
	type plain WebElement
	el := plain(NewElement("", "", ""))
	if err := value.Decode(&el); err != nil {
		return err
	}
	*e = WebElement(el)
	return nil
}

// UnmarshalYAML fills in NewGoal defaults for omitted fields.
func (g *Goal) UnmarshalYAML(value *yaml.Node) error {
	type plain Goal
	goal := plain(NewGoal("", ""))
	if err := value.Decode(&goal); err != nil {
		return err
	}
	*g = Goal(goal)
	return nil
}
