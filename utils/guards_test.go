package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsTokenBlacklisted(ctx, "tok-a"))

	BlacklistToken(ctx, "tok-a", time.Now().Add(time.Minute))
	assert.True(t, IsTokenBlacklisted(ctx, "tok-a"))
	assert.False(t, IsTokenBlacklisted(ctx, "tok-b"))

	BlacklistToken(ctx, "tok-expired", time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted(ctx, "tok-expired"))
}

func TestRegistrationCooldownPerIP(t *testing.T) {
	ctx := context.Background()
	assert.True(t, RegistrationCooldownTry(ctx, "10.0.0.1"))
	assert.False(t, RegistrationCooldownTry(ctx, "10.0.0.1"))
	assert.True(t, RegistrationCooldownTry(ctx, "10.0.0.2"))

	// no redis, so no daily cap
	assert.True(t, RegistrationDailyLimitCheck(ctx, "10.0.0.1"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "<b>found</b> it", Sanitize(`<b>found</b> it<script>alert(1)</script>`))
	assert.NotContains(t, Sanitize(`<a href="javascript:alert(1)">x</a>`), "javascript")
	assert.Equal(t, "Wallet", SanitizeText("  <i>Wallet</i>  "))
	assert.Empty(t, SanitizeText("<script>x</script>"))
}

func TestSanitizeKeepsPunctuation(t *testing.T) {
	assert.Equal(t, `A&B Hall, Tom's "spot" 1 < 2`, SanitizeText(`A&B Hall, Tom's "spot" 1 < 2`))
	assert.Equal(t, "<script>", SanitizeText("&lt;script&gt;"), "plain text fields hold text, not markup")

	assert.Equal(t, `Tom's <b>A&B</b> "note"`, Sanitize(`Tom's <b>A&B</b> "note"`))
	assert.Equal(t, "&lt;script&gt; &amp;amp; x", Sanitize("&lt;script&gt; &amp;amp; x"))

	link := Sanitize(`<a href="http://x.test/?a=1&b=2" title='say "hi"'>A&B</a>`)
	assert.Contains(t, link, `title="say &#34;hi&#34;"`, "attribute values stay escaped")
	assert.Contains(t, link, ">A&B</a>")
}
