// Package gate decides whether a visitor may see a route.
package gate

// Requirement is what a route demands from the visitor.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Admin
	// GuestOnly routes (login, register) bounce visitors who are already signed in.
	GuestOnly
)

func (r Requirement) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	case GuestOnly:
		return "guest"
	default:
		return "public"
	}
}

// Principal is the visitor as far as routing is concerned.
type Principal struct {
	Authenticated bool
	Admin         bool
}

// Paths the gate redirects to.
const (
	HomePath  = "/"
	LoginPath = "/login"
	AdminPath = "/admin"
)

// Notices attached to redirects.
const (
	NoticeLoginRequired  = "Bu sayfayı görüntülemek için giriş yapmalısınız!"
	NoticeDetailRequired = "Hesap detaylarını görmek için giriş yapmalısınız!"
)

// Decision is the outcome of Evaluate. When Allow is false Redirect is set;
// Notice may be empty.
type Decision struct {
	Allow    bool
	Redirect string
	Notice   string
}

// Evaluate applies the access table:
//
//	unauthenticated on an authenticated route: login, with a warning
//	unauthenticated or non-admin on an admin route: home
//	signed in on a guest route: admin dashboard for admins, home otherwise
func Evaluate(p Principal, req Requirement) Decision {
	switch req {
	case Authenticated:
		if !p.Authenticated {
			return Decision{Redirect: LoginPath, Notice: NoticeLoginRequired}
		}
	case Admin:
		if !p.Authenticated || !p.Admin {
			return Decision{Redirect: HomePath}
		}
	case GuestOnly:
		if p.Authenticated {
			return Decision{Redirect: LandingPath(p)}
		}
	}
	return Decision{Allow: true}
}

// LandingPath is where a freshly signed-in visitor goes.
func LandingPath(p Principal) string {
	if p.Admin {
		return AdminPath
	}
	return HomePath
}
