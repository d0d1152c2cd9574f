package domain

// FoodItem is a consumable granted as a training reward and fed to characters.
type FoodItem struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Emoji string `json:"emoji" yaml:"emoji"`
}
