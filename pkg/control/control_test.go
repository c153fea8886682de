package control_test

import (
	"context"
	"errors"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tessiemcp/tessie-mcp/mocks"
	"github.com/tessiemcp/tessie-mcp/pkg/control"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

const vin = "5YJ3E1EA7KF000001"

var _ = Describe("Executor", func() {
	var (
		ctrl      *gomock.Controller
		commander *mocks.ControlCommander
		executor  *control.Executor
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		commander = mocks.NewControlCommander(ctrl)
		executor = control.New(vin, commander)
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	Context("Execute", func() {
		respond := func(response map[string]interface{}) control.Call {
			return func(context.Context) (map[string]interface{}, error) {
				return response, nil
			}
		}

		It("reports success", func() {
			outcome, err := executor.Execute(ctx, control.HonkHorn, respond(map[string]interface{}{"result": true}))
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Succeeded).To(BeTrue())
			Expect(outcome.Err()).NotTo(HaveOccurred())
			Expect(outcome.Message()).To(Equal("Successfully honked the horn!"))
		})

		It("surfaces the rejection reason", func() {
			outcome, err := executor.Execute(ctx, control.HonkHorn, respond(map[string]interface{}{"result": false, "reason": "vehicle asleep"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Succeeded).To(BeFalse())
			Expect(outcome.Reason).To(Equal("vehicle asleep"))
			Expect(outcome.Message()).To(Equal("Failed to honk horn: vehicle asleep"))

			var failed *control.CommandFailedError
			Expect(errors.As(outcome.Err(), &failed)).To(BeTrue())
			Expect(failed.Command).To(Equal(control.HonkHorn))
			Expect(failed.Reason).To(Equal("vehicle asleep"))
		})

		It("uses a generic reason when none is given", func() {
			outcome, err := executor.Execute(ctx, control.FlashLights, respond(map[string]interface{}{"result": false}))
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Reason).To(Equal(control.UnknownErrorReason))
			Expect(outcome.Message()).To(Equal("Failed to flash lights: Unknown error"))
		})

		It("treats a missing result as failure", func() {
			outcome, err := executor.Execute(ctx, control.FlashLights, respond(map[string]interface{}{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Succeeded).To(BeFalse())
		})

		It("wraps request errors", func() {
			outcome, err := executor.Execute(ctx, control.HonkHorn, func(context.Context) (map[string]interface{}, error) {
				return nil, tessie.ErrRateLimited
			})
			Expect(outcome.Succeeded).To(BeFalse())
			Expect(err).To(MatchError(tessie.ErrRateLimited))
			Expect(err.Error()).To(Equal("Error honking horn: " + tessie.ErrRateLimited.Error()))
		})

		It("short-circuits disabled commands", func() {
			called := false
			outcome, err := executor.Execute(ctx, control.LockDoors, func(context.Context) (map[string]interface{}, error) {
				called = true
				return nil, nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(called).To(BeFalse())
			Expect(outcome.NotEnabled).To(BeTrue())
			Expect(outcome.Err()).To(MatchError(control.ErrNotEnabled))
			Expect(outcome.Message()).To(Equal("Control action 'lock_doors' is not enabled yet. Control endpoints will ship later this week."))
		})
	})

	Context("named commands", func() {
		It("honks the horn", func() {
			commander.EXPECT().Command(gomock.Any(), vin, tessie.EndpointCommandHonk, gomock.Nil()).
				Return(map[string]interface{}{"result": true}, nil)
			outcome, err := executor.HonkHorn(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Message()).To(Equal("Successfully honked the horn!"))
		})

		It("flashes the lights", func() {
			commander.EXPECT().Command(gomock.Any(), vin, tessie.EndpointCommandFlash, gomock.Nil()).
				Return(map[string]interface{}{"result": false, "reason": "user_present"}, nil)
			outcome, err := executor.FlashLights(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Message()).To(Equal("Failed to flash lights: user_present"))
		})

		It("does not contact the vehicle for disabled commands", func() {
			for _, f := range []func(context.Context) (control.Outcome, error){
				executor.LockDoors, executor.UnlockDoors, executor.StartClimate, executor.StopClimate,
			} {
				outcome, err := f(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.NotEnabled).To(BeTrue())
			}
			outcome, err := executor.SetTemperature(ctx, 21, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.NotEnabled).To(BeTrue())
		})

		Context("with every command enabled", func() {
			BeforeEach(func() {
				executor.EnableAll()
			})

			DescribeTable("sends the command",
				func(run func(*control.Executor, context.Context) (control.Outcome, error), endpoint, message string) {
					commander.EXPECT().Command(gomock.Any(), vin, endpoint, gomock.Nil()).
						Return(map[string]interface{}{"result": true}, nil)
					outcome, err := run(executor, ctx)
					Expect(err).NotTo(HaveOccurred())
					Expect(outcome.Message()).To(Equal(message))
				},
				Entry("lock", (*control.Executor).LockDoors, tessie.EndpointCommandLock, "Successfully locked the doors!"),
				Entry("unlock", (*control.Executor).UnlockDoors, tessie.EndpointCommandUnlock, "Successfully unlocked the doors!"),
				Entry("start climate", (*control.Executor).StartClimate, tessie.EndpointCommandStartAC, "Successfully started climate control!"),
				Entry("stop climate", (*control.Executor).StopClimate, tessie.EndpointCommandStopAC, "Successfully stopped climate control!"),
			)

			It("sets the cabin temperature", func() {
				commander.EXPECT().Command(gomock.Any(), vin, tessie.EndpointCommandSetTemp, gomock.Any()).
					DoAndReturn(func(_ context.Context, _, _ string, params url.Values) (map[string]interface{}, error) {
						Expect(params.Get("temperature")).To(Equal("21.5"))
						Expect(params.Get("wait_for_completion")).To(Equal("true"))
						return map[string]interface{}{"result": true}, nil
					})
				outcome, err := executor.SetTemperature(ctx, 21.5, true)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Message()).To(Equal("Successfully set the cabin temperature!"))
			})

			It("reports gateway failures per command", func() {
				commander.EXPECT().Command(gomock.Any(), vin, tessie.EndpointCommandUnlock, gomock.Nil()).
					Return(nil, tessie.ErrAuthentication)
				_, err := executor.UnlockDoors(ctx)
				var requestErr *control.RequestError
				Expect(errors.As(err, &requestErr)).To(BeTrue())
				Expect(requestErr.Command).To(Equal(control.UnlockDoors))
				Expect(err).To(MatchError(tessie.ErrAuthentication))
			})
		})
	})
})
