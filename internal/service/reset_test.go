package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dtroode/authcore/internal/credential"
	"github.com/dtroode/authcore/internal/model"
	"github.com/dtroode/authcore/internal/testutil"
)

var _ = Describe("ResetWorkflow", func() {
	var (
		ctx        context.Context
		store      *memIdentityStore
		dispatcher *recordingDispatcher
		fallback   *recordingFallback
		workflow   *ResetWorkflow
		identity   model.Identity
		clock      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemIdentityStore()
		dispatcher = &recordingDispatcher{}
		fallback = &recordingFallback{}
		clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		workflow = NewResetWorkflow(store, dispatcher, fallback, credential.NewHasher(testKDF),
			ResetOptions{TTL: time.Hour, TemplateID: "password-reset"}, testutil.MakeNoopLogger())
		workflow.now = func() time.Time { return clock }

		var err error
		identity, err = store.Create(ctx, model.Identity{
			ID:           uuid.New(),
			Email:        "user@example.com",
			PasswordHash: credential.DummyHash,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	stored := func() model.Identity {
		got, err := store.FindByID(ctx, identity.ID)
		Expect(err).NotTo(HaveOccurred())
		return got
	}

	Describe("Begin", func() {
		It("stores a digest, never the token itself", func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())

			token := dispatcher.lastToken()
			got := stored()
			Expect(got.HasPendingReset()).To(BeTrue())
			Expect(*got.ResetTokenHash).To(Equal(hashResetToken(token)))
			Expect(*got.ResetTokenHash).NotTo(ContainSubstring(token))
			Expect(*got.ResetRequestedAt).To(BeTemporally("==", clock))
		})

		It("issues opaque tokens that carry no account data", func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())

			token := dispatcher.lastToken()
			_, err := uuid.Parse(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(ContainSubstring(identity.ID.String()))
			Expect(dispatcher.sent[0].Data).To(HaveKeyWithValue(ResetDataEmail, "user@example.com"))
		})

		It("supersedes the previous token", func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			first := dispatcher.lastToken()
			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			second := dispatcher.lastToken()

			Expect(second).NotTo(Equal(first))
			Expect(*stored().ResetTokenHash).To(Equal(hashResetToken(second)))

			Expect(workflow.Complete(ctx, first, "new-secret")).To(MatchError(model.ErrResetTokenInvalid))
			Expect(workflow.Complete(ctx, second, "new-secret")).To(Succeed())
		})

		It("logs under the reset workflow prefix without the token", func() {
			log, buf := testutil.MakeBufferLogger()
			workflow.logger = log

			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			Expect(workflow.Complete(ctx, dispatcher.lastToken(), "new-secret")).To(Succeed())

			out := buf.String()
			Expect(out).To(ContainSubstring("Reset workflow: reset token stored"))
			Expect(out).To(ContainSubstring("Reset workflow: password reset completed"))
			Expect(out).NotTo(ContainSubstring("Auth service:"))
			Expect(out).NotTo(ContainSubstring(dispatcher.lastToken()))
		})

		It("does not touch the ban flag", func() {
			store.setBanned(identity.ID, true)

			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			Expect(stored().IsBanned).To(BeTrue())
		})

		Context("when the dispatcher rejects the notification", func() {
			BeforeEach(func() {
				dispatcher.err = errProviderDown
			})

			It("keeps the token pending and reports a notification failure", func() {
				Expect(workflow.Begin(ctx, identity)).To(MatchError(model.ErrNotificationFailure))
				Expect(stored().HasPendingReset()).To(BeTrue())
			})

			It("hands the token to the diagnostic fallback", func() {
				Expect(workflow.Begin(ctx, identity)).To(MatchError(model.ErrNotificationFailure))
				Expect(fallback.tokens).To(HaveLen(1))
				Expect(*stored().ResetTokenHash).To(Equal(hashResetToken(fallback.tokens[0])))
			})

			It("lets the pending token still be consumed", func() {
				Expect(workflow.Begin(ctx, identity)).To(MatchError(model.ErrNotificationFailure))
				Expect(workflow.Complete(ctx, fallback.tokens[0], "new-secret")).To(Succeed())
			})
		})

		Context("when storing the token fails", func() {
			BeforeEach(func() {
				store.writeErr = errProviderDown
			})

			It("does not dispatch", func() {
				err := workflow.Begin(ctx, identity)
				Expect(err).To(MatchError(errProviderDown))
				Expect(dispatcher.sent).To(BeEmpty())
				Expect(fallback.tokens).To(BeEmpty())
			})
		})

		It("never emits to the fallback when dispatch succeeds", func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			Expect(fallback.tokens).To(BeEmpty())
		})
	})

	Describe("Complete", func() {
		var token string

		BeforeEach(func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			token = dispatcher.lastToken()
		})

		It("sets the new password and consumes the token", func() {
			Expect(workflow.Complete(ctx, token, "new-secret")).To(Succeed())

			got := stored()
			Expect(got.HasPendingReset()).To(BeFalse())
			Expect(credential.Verify("new-secret", got.PasswordHash)).To(BeTrue())
		})

		It("rejects a consumed token", func() {
			Expect(workflow.Complete(ctx, token, "new-secret")).To(Succeed())
			Expect(workflow.Complete(ctx, token, "other-secret")).To(MatchError(model.ErrResetTokenInvalid))

			Expect(credential.Verify("new-secret", stored().PasswordHash)).To(BeTrue())
		})

		It("rejects an expired token and clears it", func() {
			clock = clock.Add(time.Hour + time.Second)

			Expect(workflow.Complete(ctx, token, "new-secret")).To(MatchError(model.ErrResetTokenExpired))
			Expect(stored().HasPendingReset()).To(BeFalse())
			Expect(workflow.Complete(ctx, token, "new-secret")).To(MatchError(model.ErrResetTokenInvalid))
		})

		It("accepts a token right at the expiry boundary", func() {
			clock = clock.Add(time.Hour)

			Expect(workflow.Complete(ctx, token, "new-secret")).To(Succeed())
		})

		It("refuses banned identities and keeps the token", func() {
			store.setBanned(identity.ID, true)

			Expect(workflow.Complete(ctx, token, "new-secret")).To(MatchError(model.ErrAccountBanned))
			Expect(stored().HasPendingReset()).To(BeTrue())
			Expect(stored().PasswordHash).To(Equal(credential.DummyHash))
		})

		It("rejects an empty password before looking up the token", func() {
			Expect(workflow.Complete(ctx, token, "")).To(MatchError(model.ErrEmptySecret))
			Expect(stored().HasPendingReset()).To(BeTrue())
		})

		It("rejects unknown and empty tokens", func() {
			Expect(workflow.Complete(ctx, uuid.NewString(), "new-secret")).To(MatchError(model.ErrResetTokenInvalid))
			Expect(workflow.Complete(ctx, "", "new-secret")).To(MatchError(model.ErrResetTokenInvalid))
		})
	})

	Describe("interleaved operations", func() {
		var token string

		BeforeEach(func() {
			Expect(workflow.Begin(ctx, identity)).To(Succeed())
			token = dispatcher.lastToken()
		})

		It("lets only one of two concurrent completions consume the token", func() {
			var lookups sync.WaitGroup
			lookups.Add(2)
			store.afterLookup = func() {
				lookups.Done()
				lookups.Wait()
			}

			results := make(chan error, 2)
			for _, secret := range []string{"first-secret", "second-secret"} {
				go func(secret string) {
					defer GinkgoRecover()
					results <- workflow.Complete(ctx, token, secret)
				}(secret)
			}

			succeeded := 0
			for _, err := range []error{<-results, <-results} {
				if err == nil {
					succeeded++
					continue
				}
				Expect(err).To(MatchError(model.ErrResetTokenInvalid))
			}
			Expect(succeeded).To(Equal(1))

			got := stored()
			Expect(got.HasPendingReset()).To(BeFalse())
			first := credential.Verify("first-secret", got.PasswordHash)
			second := credential.Verify("second-secret", got.PasswordHash)
			Expect(first != second).To(BeTrue(), "exactly one password must be stored")
		})

		It("keeps the new password when a stale snapshot starts another reset", func() {
			stale, err := store.FindByEmail(ctx, identity.Email)
			Expect(err).NotTo(HaveOccurred())

			Expect(workflow.Complete(ctx, token, "new-secret")).To(Succeed())
			Expect(workflow.Begin(ctx, stale)).To(Succeed())

			got := stored()
			Expect(got.HasPendingReset()).To(BeTrue())
			Expect(got.PasswordHash).NotTo(Equal(credential.DummyHash))
			Expect(credential.Verify("new-secret", got.PasswordHash)).To(BeTrue())
		})

		It("does not let an expired token clear a newer one", func() {
			clock = clock.Add(time.Hour + time.Second)
			store.afterLookup = func() {
				store.afterLookup = nil
				Expect(workflow.Begin(ctx, identity)).To(Succeed())
			}

			Expect(workflow.Complete(ctx, token, "new-secret")).To(MatchError(model.ErrResetTokenExpired))

			fresh := dispatcher.lastToken()
			Expect(fresh).NotTo(Equal(token))
			Expect(*stored().ResetTokenHash).To(Equal(hashResetToken(fresh)))
			Expect(workflow.Complete(ctx, fresh, "new-secret")).To(Succeed())
		})

		It("does not consume a token for an identity banned after the lookup", func() {
			store.afterLookup = func() {
				store.setBanned(identity.ID, true)
			}

			Expect(workflow.Complete(ctx, token, "new-secret")).To(MatchError(model.ErrResetTokenInvalid))
			Expect(stored().PasswordHash).To(Equal(credential.DummyHash))
			Expect(stored().HasPendingReset()).To(BeTrue())
		})
	})
})
