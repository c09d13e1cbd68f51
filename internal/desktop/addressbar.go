package desktop

// addressBar holds the route and document title of a session. It has no
// history: focus changes replace the current entry.
type addressBar struct {
	location string
	title    string
	replaced int
}

func (a *addressBar) Location() string {
	return a.location
}

func (a *addressBar) Replace(route string) error {
	a.location = route
	a.replaced++
	return nil
}

func (a *addressBar) SetTitle(title string) {
	a.title = title
}
