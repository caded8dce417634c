package auth

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/photolog-app/photolog/model"
	"gorm.io/gorm"
)

// Service signs members up and in against the Cognito user pool. The local
// users table mirrors the pool: the Cognito sub is our primary key, profile
// fields and counters live only on our side.
type Service struct {
	Client   *cognitoidentityprovider.Client
	ClientId string
	DB       *gorm.DB
}

func NewService(client *cognitoidentityprovider.Client, db *gorm.DB) *Service {
	return &Service{
		Client:   client,
		ClientId: os.Getenv("COGNITO_CLIENT_ID"),
		DB:       db,
	}
}

var nonDigitRe = regexp.MustCompile(`\D`)

// SignUp creates the pool user and the mirrored row. Name and gisu are
// required. Gisu is stored as bare digits, the 기 suffix is a display
// concern.
func (s *Service) SignUp(ctx context.Context, input *model.SignUpInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("이름을 입력해주세요.")
	}
	gisu := nonDigitRe.ReplaceAllString(input.Gisu, "")
	if gisu == "" {
		return nil, errors.New("기수를 입력해주세요.")
	}

	res, err := s.Client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.ClientId),
		Username: aws.String(input.Email),
		Password: aws.String(input.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(input.Email)},
		},
	})
	if err != nil {
		return nil, localizeAuthError(err)
	}

	user := &model.User{
		Id:    aws.ToString(res.UserSub),
		Email: input.Email,
		Name:  name,
		Gisu:  gisu,
		Role:  model.RoleMember,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn exchanges email and password for a token pair.
func (s *Service) SignIn(ctx context.Context, input *model.SignInInput) (*model.TokenPair, error) {
	res, err := s.Client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		ClientId: aws.String(s.ClientId),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": input.Email,
			"PASSWORD": input.Password,
		},
	})
	if err != nil {
		return nil, localizeAuthError(err)
	}
	if res.AuthenticationResult == nil {
		return nil, errors.New("로그인에 실패했어요. 다시 시도해주세요.")
	}

	return &model.TokenPair{
		AccessToken:  aws.ToString(res.AuthenticationResult.AccessToken),
		IdToken:      aws.ToString(res.AuthenticationResult.IdToken),
		RefreshToken: aws.ToString(res.AuthenticationResult.RefreshToken),
		ExpiresIn:    res.AuthenticationResult.ExpiresIn,
	}, nil
}

// SignOut revokes every token issued for the given access token.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	_, err := s.Client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return err
}

// localizeAuthError maps Cognito errors onto the Korean messages the SPA
// shows verbatim. Unknown errors pass through untouched.
func localizeAuthError(err error) error {
	var userNotFound *types.UserNotFoundException
	if errors.As(err, &userNotFound) {
		return errors.New("가입된 계정이 없어요. 회원가입을 해주세요.")
	}
	var notAuthorized *types.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return errors.New("비밀번호가 일치하지 않아요.")
	}
	var usernameExists *types.UsernameExistsException
	if errors.As(err, &usernameExists) {
		return errors.New("이미 가입된 이메일입니다.")
	}
	var invalidPassword *types.InvalidPasswordException
	if errors.As(err, &invalidPassword) {
		return errors.New("비밀번호는 6자리 이상이어야 해요.")
	}
	var invalidParameter *types.InvalidParameterException
	if errors.As(err, &invalidParameter) {
		return errors.New("이메일 형식이 올바르지 않아요.")
	}
	return err
}
