package gopdm

// AfterReader is implemented by objects that fix up state after a full
// recursive read. If it is not implemented, the phase is skipped.
type AfterReader interface {
	InitAfterRead() error
}

// BeforeSaver is implemented by objects that prepare state before a full
// recursive write. If it is not implemented, the phase is skipped.
type BeforeSaver interface {
	SetupBeforeSave() error
}

// initAfterRead runs AfterReader hooks bottom-up: every child before its
// parent. Reversed pre-order gives exactly that.
func initAfterRead(root *Object) error {
	objs := Collect(root, nil)
	for i := len(objs) - 1; i >= 0; i-- {
		if ar, ok := objs[i].self.(AfterReader); ok {
			if err := ar.InitAfterRead(); err != nil {
				return wrapErr(RootPath(), CodeValidation, err)
			}
		}
	}
	return nil
}

// setupBeforeSave runs BeforeSaver hooks top-down in pre-order.
func setupBeforeSave(root *Object) error {
	for _, o := range Collect(root, nil) {
		if bs, ok := o.self.(BeforeSaver); ok {
			if err := bs.SetupBeforeSave(); err != nil {
				return wrapErr(RootPath(), CodeValidation, err)
			}
		}
	}
	return nil
}
