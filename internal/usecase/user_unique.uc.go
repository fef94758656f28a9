package usecase

import (
	"context"
	"strconv"

	"user-service/pkg/utils"
)

// resolveUniqueUsername probes the shared user/group namespace until it
// finds a free name. It returns "" when the candidate itself was free (no
// rename needed), otherwise the renamed candidate. Probes run one at a time;
// each retry appends a space and the base-32 form of the attempt counter to
// the original candidate.
func (uc *UserUsecase) resolveUniqueUsername(ctx context.Context, username string) (string, error) {
	tries := 0
	candidate := username
	for {
		exists, err := uc.userRepo.NameExists(ctx, utils.Slugify(candidate))
		if err != nil {
			return "", err
		}
		if !exists {
			if tries == 0 {
				return "", nil
			}
			return candidate, nil
		}
		candidate = username + " " + strconv.FormatInt(int64(tries), 32)
		tries++
	}
}
