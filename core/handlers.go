package core

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const missingFieldsMessage = "Please fill in all required fields."

func (r *Router) servePage(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var data PageData
		fresh := false
		if token := req.URL.Query().Get(FlashParam); token != "" {
			if notice, ok := r.flasher.Consume(token); ok {
				data.Notice = &notice
				fresh = true
			}
		}

		cacheable := r.config.CacheEnabled && !fresh
		if cacheable {
			if html, ok := GetCachedHTML(r.config, page.Route); ok {
				r.writeHTML(w, page.Name, http.StatusOK, html)
				return
			}
		}

		html, err := r.renderer.Render(page.Name, data)
		if err != nil {
			r.logger.Error("render failed", zap.String("page", page.Name), zap.Error(err))
			http.Error(w, "Template error", http.StatusInternalServerError)
			return
		}

		if cacheable {
			if err := SaveCachedHTML(r.config, page.Route, html); err != nil {
				r.logger.Warn("cache write failed", zap.String("route", page.Route), zap.Error(err))
			}
		}

		r.writeHTML(w, page.Name, http.StatusOK, html)
	}
}

func (r *Router) handleContact(w http.ResponseWriter, req *http.Request) {
	submission, err := ParseContact(req)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	notice := Notice{Category: NoticeError, Message: missingFieldsMessage}
	if err := Validate(submission); err == nil {
		notice = Notice{
			Category: NoticeSuccess,
			Message:  fmt.Sprintf("Thank you %s! Your message has been received.", submission.Name),
		}
		r.submissions.Info("contact form submitted", submission.LogFields()...)
	} else if !IsValidationError(err) {
		r.logger.Error("contact validation failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	r.redirectWithNotice(w, req, "/contact", notice)
}

func (r *Router) handleReview(w http.ResponseWriter, req *http.Request) {
	submission, err := ParseReview(req)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	notice := Notice{Category: NoticeError, Message: missingFieldsMessage}
	if err := Validate(submission); err == nil {
		notice = Notice{
			Category: NoticeSuccess,
			Message:  fmt.Sprintf("Thank you %s! Your review has been submitted.", submission.ReviewerName),
		}
		r.submissions.Info("review submitted", submission.LogFields()...)
	} else if !IsValidationError(err) {
		r.logger.Error("review validation failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	r.redirectWithNotice(w, req, "/reviews", notice)
}

func (r *Router) redirectWithNotice(w http.ResponseWriter, req *http.Request, target string, notice Notice) {
	location, err := r.flasher.RedirectURL(target, notice)
	if err != nil {
		r.logger.Error("issue notice failed", zap.Error(err))
		location = target
	}
	http.Redirect(w, req, location, http.StatusFound)
}

func (r *Router) notFound(w http.ResponseWriter, req *http.Request) {
	html, err := r.renderer.Render(NotFoundPage, PageData{})
	if err != nil {
		http.NotFound(w, req)
		return
	}
	r.writeHTML(w, NotFoundPage, http.StatusNotFound, html)
}

func (r *Router) writeHTML(w http.ResponseWriter, page string, status int, html []byte) {
	if r.config.DebugHeaders {
		w.Header().Set("X-Storefront-Route", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(html)
}
