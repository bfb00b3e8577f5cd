package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Students   *StudentHandler
	Lessons    *LessonHandler
	Rules      *RuleHandler
	Timeline   *TimelineHandler
	Progress   *ProgressHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Students != nil {
		mux.HandleFunc("/students", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Students.List(w, r)
			case http.MethodPost:
				cfg.Students.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/students/", func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/students/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithStudentID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Students.Get(w, r)
				case http.MethodPut:
					cfg.Students.Update(w, r)
				case http.MethodDelete:
					cfg.Students.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "lessons":
				if cfg.Lessons == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Lessons.ListByStudent(w, r)
			case "rules":
				if cfg.Rules == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Rules.ListByStudent(w, r)
			case "progress":
				if cfg.Progress == nil {
					http.NotFound(w, r)
					return
				}
				switch r.Method {
				case http.MethodGet:
					cfg.Progress.ListByStudent(w, r)
				case http.MethodPost:
					cfg.Progress.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Lessons != nil {
		mux.HandleFunc("/lessons", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Lessons.List(w, r)
			case http.MethodPost:
				cfg.Lessons.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/lessons/", func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/lessons/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithLessonID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Lessons.Get(w, r)
				case http.MethodPut:
					cfg.Lessons.Update(w, r)
				case http.MethodDelete:
					cfg.Lessons.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "payment":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Lessons.UpdatePayment(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Rules != nil {
		mux.HandleFunc("/rules", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rules.List(w, r)
			case http.MethodPost:
				cfg.Rules.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/rules/", func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/rules/")
			if id == "" || sub != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRuleID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Rules.Get(w, r)
			case http.MethodPut:
				cfg.Rules.Update(w, r)
			case http.MethodDelete:
				cfg.Rules.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Timeline != nil {
		mux.HandleFunc("/timeline", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Timeline.Timeline(w, r)
		})
		mux.HandleFunc("/materialize", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Timeline.Materialize(w, r)
		})
		mux.HandleFunc("/payments/summary", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Timeline.PaymentSummary(w, r)
		})
	}

	if cfg.Progress != nil {
		mux.HandleFunc("/progress/", func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/progress/")
			if id == "" || sub != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithProgressID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Progress.Update(w, r)
			case http.MethodDelete:
				cfg.Progress.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitResourcePath separates "/students/abc/lessons" into the resource ID
// "abc" and the sub-resource "lessons". Trailing slashes are tolerated.
func splitResourcePath(path, prefix string) (id, sub string) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		sub = parts[1]
	}
	return id, sub
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
