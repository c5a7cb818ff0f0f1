package buildinfo

const ProjectName = "lucky6"

const (
	GithubURL    = "https://github.com/lucky6-games/lucky6"
	BotFatherURL = "https://t.me/BotFather"
)

const Graffiti = `
 _            _          __
| |_   _  ___| | ___   _/ /_
| | | | |/ __| |/ / | | | '_ \
| | |_| | (__|   <| |_| | (_) |
|_|\__,_|\___|_|\_\\__, |\___/
                   |___/
`

const GreetingCLI = "%s version: %s\nsource: %s\n\n"
