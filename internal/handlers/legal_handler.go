package handlers

import (
	"html"

	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

type LegalHandler struct {
	appName string
}

func NewLegalHandler(appName string) *LegalHandler {
	if appName == "" {
		appName = "Sussurro"
	}
	return &LegalHandler{appName: html.EscapeString(appName)}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: October 2026</p>
<h2>What We Store</h2>
<p>Your email address is used only to sign in and is never shown to other users. Everything you publish appears under your pseudonymous username and avatar.</p>
<h2>Posts and Interactions</h2>
<p>We store your posts, comments, reactions, follows, saved posts and battle votes so ` + h.appName + ` can show counters and your history.</p>
<h2>Moderation</h2>
<p>Reports you file are visible to moderators only. The reported author is never told who reported them.</p>
<h2>Account Deletion</h2>
<p>Deleting your account removes your reactions, comment likes, follows, saved posts, blocks and notifications, and hides every post you wrote.</p>
</body></html>`)
}

func (h *LegalHandler) CommunityGuidelines(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Community Guidelines - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Community Guidelines</h1>
<p>Last updated: October 2026</p>
<h2>Stay Anonymous</h2>
<p>Do not post names, phone numbers, emails, links or handles that identify you or anyone else. Posts containing them are rejected automatically.</p>
<h2>Be Kind</h2>
<p>Hate speech, harassment, violence and sexual content are removed. Repeated violations lead to a ban.</p>
<h2>No Spam</h2>
<p>Posting is limited per hour and per day, and comments have a short cooldown.</p>
<h2>Reporting</h2>
<p>Use the report button on any post or comment. Moderators review every report.</p>
</body></html>`)
}
